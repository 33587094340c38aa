// Package client implements the Client repository using PostgreSQL.
package client

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/shaheenlf/slf-backend/internal/adapter/postgres"
	"github.com/shaheenlf/slf-backend/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "clients"

var columns = []string{
	"id", "name", "national_id", "phone", "address",
	"poa_number", "notary_office", "poa_date", "notes",
	"created_at", "updated_at",
}

// Repo provides client persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new client repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	NationalID   string     `db:"national_id"`
	Phone        string     `db:"phone"`
	Address      string     `db:"address"`
	POANumber    string     `db:"poa_number"`
	NotaryOffice string     `db:"notary_office"`
	POADate      *time.Time `db:"poa_date"`
	Notes        string     `db:"notes"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Client {
	return domain.Client{
		ID:           r.ID,
		Name:         r.Name,
		NationalID:   r.NationalID,
		Phone:        r.Phone,
		Address:      r.Address,
		POANumber:    r.POANumber,
		NotaryOffice: r.NotaryOffice,
		POADate:      r.POADate,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Create inserts a new client and returns the persisted record.
func (r *Repo) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "name", "national_id", "phone", "address",
			"poa_number", "notary_office", "poa_date", "notes").
		Values(client.ID, client.Name, client.NationalID, client.Phone, client.Address,
			client.POANumber, client.NotaryOffice, client.POADate, client.Notes).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert client: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "client", client.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByID returns a client by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select client: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "client", id)
	}

	out := rw.toDomain()
	return &out, nil
}

// List returns all clients ordered by name, excluding soft-deleted records.
func (r *Repo) List(ctx context.Context) ([]domain.Client, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list clients: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]domain.Client, len(rows))
	for i, rw := range rows {
		clients[i] = rw.toDomain()
	}
	return clients, nil
}

// Update replaces the mutable fields of a client and returns the new record.
func (r *Repo) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("name", client.Name).
		Set("national_id", client.NationalID).
		Set("phone", client.Phone).
		Set("address", client.Address).
		Set("poa_number", client.POANumber).
		Set("notary_office", client.NotaryOffice).
		Set("poa_date", client.POADate).
		Set("notes", client.Notes).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": client.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update client: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "client", client.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// SoftDelete marks a client deleted. The record is preserved.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete client: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "client", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
