// Package casefile implements the Case repository using PostgreSQL.
package casefile

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

const table = "cases"

var columns = []string{
	"id", "case_no", "year", "stage_type", "client_ids", "primary_client_id",
	"client_role", "opponent_name", "opponent_role", "court", "circuit",
	"case_type", "criminal_stage_type", "subject", "first_session_date",
	"owner_id", "status", "linked_prosecution_id", "notes",
	"created_at", "updated_at",
}

// Repo provides case persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new case repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID                  uuid.UUID   `db:"id"`
	CaseNo              string      `db:"case_no"`
	Year                string      `db:"year"`
	StageType           string      `db:"stage_type"`
	ClientIDs           []uuid.UUID `db:"client_ids"`
	PrimaryClientID     uuid.UUID   `db:"primary_client_id"`
	ClientRole          string      `db:"client_role"`
	OpponentName        string      `db:"opponent_name"`
	OpponentRole        string      `db:"opponent_role"`
	Court               string      `db:"court"`
	Circuit             string      `db:"circuit"`
	CaseType            string      `db:"case_type"`
	CriminalStageType   string      `db:"criminal_stage_type"`
	Subject             string      `db:"subject"`
	FirstSessionDate    time.Time   `db:"first_session_date"`
	OwnerID             uuid.UUID   `db:"owner_id"`
	Status              string      `db:"status"`
	LinkedProsecutionID *uuid.UUID  `db:"linked_prosecution_id"`
	Notes               string      `db:"notes"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

func (r row) toDomain() domain.Case {
	return domain.Case{
		ID:                  r.ID,
		CaseNo:              r.CaseNo,
		Year:                r.Year,
		StageType:           r.StageType,
		ClientIDs:           r.ClientIDs,
		PrimaryClientID:     r.PrimaryClientID,
		ClientRole:          r.ClientRole,
		OpponentName:        r.OpponentName,
		OpponentRole:        r.OpponentRole,
		Court:               r.Court,
		Circuit:             r.Circuit,
		CaseType:            domain.CaseType(r.CaseType),
		CriminalStageType:   r.CriminalStageType,
		Subject:             r.Subject,
		FirstSessionDate:    r.FirstSessionDate,
		OwnerID:             r.OwnerID,
		Status:              domain.CaseStatus(r.Status),
		LinkedProsecutionID: r.LinkedProsecutionID,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// Create inserts a new case and returns the persisted record.
func (r *Repo) Create(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "case_no", "year", "stage_type", "client_ids", "primary_client_id",
			"client_role", "opponent_name", "opponent_role", "court", "circuit",
			"case_type", "criminal_stage_type", "subject", "first_session_date",
			"owner_id", "status", "linked_prosecution_id", "notes").
		Values(c.ID, c.CaseNo, c.Year, c.StageType, c.ClientIDs, c.PrimaryClientID,
			c.ClientRole, c.OpponentName, c.OpponentRole, c.Court, c.Circuit,
			c.CaseType, c.CriminalStageType, c.Subject, c.FirstSessionDate,
			c.OwnerID, c.Status, c.LinkedProsecutionID, c.Notes).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert case: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", c.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByID returns a case by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select case: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	out := rw.toDomain()
	return &out, nil
}

// List returns cases ordered by creation time, newest first. When ownerID is
// non-nil only cases owned by that lawyer are returned.
func (r *Repo) List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sel := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		OrderBy("created_at DESC")
	if ownerID != nil {
		sel = sel.Where(sq.Eq{"owner_id": *ownerID})
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cases: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	cases := make([]domain.Case, len(rows))
	for i, rw := range rows {
		cases[i] = rw.toDomain()
	}
	return cases, nil
}

// ListByClient returns cases that include the given client.
func (r *Repo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		Where("client_ids @> ARRAY[?]::uuid[]", clientID).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cases by client: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list cases by client: %w", err)
	}

	cases := make([]domain.Case, len(rows))
	for i, rw := range rows {
		cases[i] = rw.toDomain()
	}
	return cases, nil
}

// Update replaces the mutable fields of a case and returns the new record.
func (r *Repo) Update(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("case_no", c.CaseNo).
		Set("year", c.Year).
		Set("stage_type", c.StageType).
		Set("client_ids", c.ClientIDs).
		Set("primary_client_id", c.PrimaryClientID).
		Set("client_role", c.ClientRole).
		Set("opponent_name", c.OpponentName).
		Set("opponent_role", c.OpponentRole).
		Set("court", c.Court).
		Set("circuit", c.Circuit).
		Set("case_type", c.CaseType).
		Set("criminal_stage_type", c.CriminalStageType).
		Set("subject", c.Subject).
		Set("first_session_date", c.FirstSessionDate).
		Set("owner_id", c.OwnerID).
		Set("status", c.Status).
		Set("linked_prosecution_id", c.LinkedProsecutionID).
		Set("notes", c.Notes).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": c.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update case: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", c.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// SoftDelete marks a case deleted. The record is preserved.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete case: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "case", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("case %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
