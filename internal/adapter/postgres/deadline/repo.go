// Package deadline implements the Deadline repository using PostgreSQL.
package deadline

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

const table = "deadlines"

var columns = []string{
	"id", "case_id", "deadline_type", "start_date", "end_date",
	"responsible_user_id", "status", "completion_note",
	"created_at", "updated_at",
}

// Repo provides deadline persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new deadline repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID                uuid.UUID `db:"id"`
	CaseID            uuid.UUID `db:"case_id"`
	DeadlineType      string    `db:"deadline_type"`
	StartDate         time.Time `db:"start_date"`
	EndDate           time.Time `db:"end_date"`
	ResponsibleUserID uuid.UUID `db:"responsible_user_id"`
	Status            string    `db:"status"`
	CompletionNote    string    `db:"completion_note"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r row) toDomain() domain.Deadline {
	return domain.Deadline{
		ID:                r.ID,
		CaseID:            r.CaseID,
		DeadlineType:      r.DeadlineType,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		ResponsibleUserID: r.ResponsibleUserID,
		Status:            domain.DeadlineStatus(r.Status),
		CompletionNote:    r.CompletionNote,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// Create inserts a new deadline and returns the persisted record.
func (r *Repo) Create(ctx context.Context, d *domain.Deadline) (*domain.Deadline, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "case_id", "deadline_type", "start_date", "end_date",
			"responsible_user_id", "status", "completion_note").
		Values(d.ID, d.CaseID, d.DeadlineType, d.StartDate, d.EndDate,
			d.ResponsibleUserID, d.Status, d.CompletionNote).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert deadline: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "deadline", d.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByID returns a deadline by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deadline, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select deadline: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "deadline", id)
	}

	out := rw.toDomain()
	return &out, nil
}

// ListByCase returns all deadlines for a case, soonest end date first.
func (r *Repo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Deadline, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"case_id": caseID, "deleted": false}).
		OrderBy("end_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list deadlines: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}

	deadlines := make([]domain.Deadline, len(rows))
	for i, rw := range rows {
		deadlines[i] = rw.toDomain()
	}
	return deadlines, nil
}

// CountOpenByCase returns the number of open deadlines on a case.
func (r *Repo) CountOpenByCase(ctx context.Context, caseID uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select("count(*)").
		From(table).
		Where(sq.Eq{"case_id": caseID, "status": domain.DeadlineStatusOpen, "deleted": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count open deadlines: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, q, &count, sql, args...); err != nil {
		return 0, fmt.Errorf("count open deadlines: %w", err)
	}
	return count, nil
}

// Update replaces the mutable fields of a deadline and returns the new record.
func (r *Repo) Update(ctx context.Context, d *domain.Deadline) (*domain.Deadline, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deadline_type", d.DeadlineType).
		Set("start_date", d.StartDate).
		Set("end_date", d.EndDate).
		Set("responsible_user_id", d.ResponsibleUserID).
		Set("status", d.Status).
		Set("completion_note", d.CompletionNote).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": d.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update deadline: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "deadline", d.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// MarkExpired flips every open deadline whose window has lapsed to EXPIRED
// and returns the number of rows affected.
func (r *Repo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("status", domain.DeadlineStatusExpired).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"status": domain.DeadlineStatusOpen, "deleted": false}).
		Where("end_date < ?::date", now).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark expired deadlines: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("mark expired deadlines: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SoftDelete marks a deadline deleted. The record is preserved.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete deadline: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "deadline", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deadline %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
