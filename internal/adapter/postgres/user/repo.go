// Package user implements the User repository using PostgreSQL.
package user

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

const table = "users"

var columns = []string{
	"id", "name", "role", "email", "phone", "active", "password_hash",
	"created_at", "updated_at",
}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	Active       bool      `db:"active"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r row) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Role:         domain.UserRole(r.Role),
		Email:        r.Email,
		Phone:        r.Phone,
		Active:       r.Active,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Create inserts a new user and returns the persisted record.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "name", "role", "email", "phone", "active", "password_hash").
		Values(u.ID, u.Name, u.Role, u.Email, u.Phone, u.Active, u.PasswordHash).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByID returns a user by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByEmail returns a user by email. Used by password login.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"email": email, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by email: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", uuid.Nil)
	}

	out := rw.toDomain()
	return &out, nil
}

// List returns all users ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, len(rows))
	for i, rw := range rows {
		users[i] = rw.toDomain()
	}
	return users, nil
}

// Update replaces the mutable fields of a user and returns the new record.
func (r *Repo) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("name", u.Name).
		Set("role", u.Role).
		Set("email", u.Email).
		Set("phone", u.Phone).
		Set("active", u.Active).
		Set("password_hash", u.PasswordHash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": u.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// SoftDelete marks a user deleted. Referencing records keep the ID.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Set("active", false).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete user: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
