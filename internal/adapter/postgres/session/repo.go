// Package session implements the Session repository using PostgreSQL.
package session

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

const table = "sessions"

var columns = []string{
	"id", "case_id", "date", "session_type", "decision_outcome",
	"next_session_date", "status", "closure_reason", "notes", "auto",
	"created_at", "updated_at",
}

// Repo provides session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID              uuid.UUID  `db:"id"`
	CaseID          uuid.UUID  `db:"case_id"`
	Date            time.Time  `db:"date"`
	SessionType     string     `db:"session_type"`
	DecisionOutcome string     `db:"decision_outcome"`
	NextSessionDate *time.Time `db:"next_session_date"`
	Status          string     `db:"status"`
	ClosureReason   string     `db:"closure_reason"`
	Notes           string     `db:"notes"`
	Auto            bool       `db:"auto"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r row) toDomain() domain.Session {
	return domain.Session{
		ID:              r.ID,
		CaseID:          r.CaseID,
		Date:            r.Date,
		SessionType:     r.SessionType,
		DecisionOutcome: r.DecisionOutcome,
		NextSessionDate: r.NextSessionDate,
		Status:          domain.SessionStatus(r.Status),
		ClosureReason:   domain.ClosureReason(r.ClosureReason),
		Notes:           r.Notes,
		Auto:            r.Auto,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Create inserts a new session and returns the persisted record.
func (r *Repo) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "case_id", "date", "session_type", "decision_outcome",
			"next_session_date", "status", "closure_reason", "notes", "auto").
		Values(s.ID, s.CaseID, s.Date, s.SessionType, s.DecisionOutcome,
			s.NextSessionDate, s.Status, s.ClosureReason, s.Notes, s.Auto).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert session: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", s.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// GetByID returns a session by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", id)
	}

	out := rw.toDomain()
	return &out, nil
}

// ListByCase returns all sessions for a case ordered by session date.
func (r *Repo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Session, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"case_id": caseID, "deleted": false}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]domain.Session, len(rows))
	for i, rw := range rows {
		sessions[i] = rw.toDomain()
	}
	return sessions, nil
}

// ExistsForCaseDate reports whether the case already has a session on the
// given date. excludeID, when non-nil, is skipped so a session does not
// collide with itself during edits.
func (r *Repo) ExistsForCaseDate(ctx context.Context, caseID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sel := builder.Select("1").
		From(table).
		Where(sq.Eq{"case_id": caseID, "deleted": false}).
		Where("date = ?::date", date)
	if excludeID != nil {
		sel = sel.Where(sq.NotEq{"id": *excludeID})
	}

	sql, args, err := sel.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build session exists: %w", err)
	}

	var one int
	if err := pgxscan.Get(ctx, q, &one, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("session exists: %w", err)
	}
	return true, nil
}

// Update replaces the mutable fields of a session and returns the new record.
func (r *Repo) Update(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("date", s.Date).
		Set("session_type", s.SessionType).
		Set("decision_outcome", s.DecisionOutcome).
		Set("next_session_date", s.NextSessionDate).
		Set("status", s.Status).
		Set("closure_reason", s.ClosureReason).
		Set("notes", s.Notes).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": s.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update session: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "session", s.ID)
	}

	out := rw.toDomain()
	return &out, nil
}

// SoftDelete marks a session deleted. The record is preserved.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete session: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "session", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
