// Package action implements the Action repository using PostgreSQL.
package action

import (
	"context"
	"encoding/json"
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

const table = "actions"

var columns = []string{
	"id", "client_id", "case_id", "session_id", "action_type", "title",
	"priority", "responsible_user_id", "status", "due_date", "execution_date",
	"execution_details", "sub_tasks", "notes", "created_at", "updated_at",
}

// Repo provides action persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new action repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID                uuid.UUID       `db:"id"`
	ClientID          uuid.UUID       `db:"client_id"`
	CaseID            *uuid.UUID      `db:"case_id"`
	SessionID         *uuid.UUID      `db:"session_id"`
	ActionType        string          `db:"action_type"`
	Title             string          `db:"title"`
	Priority          string          `db:"priority"`
	ResponsibleUserID uuid.UUID       `db:"responsible_user_id"`
	Status            string          `db:"status"`
	DueDate           *time.Time      `db:"due_date"`
	ExecutionDate     *time.Time      `db:"execution_date"`
	ExecutionDetails  string          `db:"execution_details"`
	SubTasks          json.RawMessage `db:"sub_tasks"`
	Notes             string          `db:"notes"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r row) toDomain() (domain.Action, error) {
	var subTasks []domain.SubTask
	if len(r.SubTasks) > 0 {
		if err := json.Unmarshal(r.SubTasks, &subTasks); err != nil {
			return domain.Action{}, fmt.Errorf("unmarshal sub tasks: %w", err)
		}
	}
	return domain.Action{
		ID:                r.ID,
		ClientID:          r.ClientID,
		CaseID:            r.CaseID,
		SessionID:         r.SessionID,
		ActionType:        r.ActionType,
		Title:             r.Title,
		Priority:          domain.Priority(r.Priority),
		ResponsibleUserID: r.ResponsibleUserID,
		Status:            domain.ActionStatus(r.Status),
		DueDate:           r.DueDate,
		ExecutionDate:     r.ExecutionDate,
		ExecutionDetails:  r.ExecutionDetails,
		SubTasks:          subTasks,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}, nil
}

func marshalSubTasks(subTasks []domain.SubTask) ([]byte, error) {
	if subTasks == nil {
		subTasks = []domain.SubTask{}
	}
	raw, err := json.Marshal(subTasks)
	if err != nil {
		return nil, fmt.Errorf("marshal sub tasks: %w", err)
	}
	return raw, nil
}

// Create inserts a new action and returns the persisted record.
func (r *Repo) Create(ctx context.Context, a *domain.Action) (*domain.Action, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	subTasks, err := marshalSubTasks(a.SubTasks)
	if err != nil {
		return nil, err
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "client_id", "case_id", "session_id", "action_type", "title",
			"priority", "responsible_user_id", "status", "due_date", "execution_date",
			"execution_details", "sub_tasks", "notes").
		Values(a.ID, a.ClientID, a.CaseID, a.SessionID, a.ActionType, a.Title,
			a.Priority, a.ResponsibleUserID, a.Status, a.DueDate, a.ExecutionDate,
			a.ExecutionDetails, subTasks, a.Notes).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert action: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "action", a.ID)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns an action by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select action: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "action", id)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) list(ctx context.Context, pred any, args ...any) ([]domain.Action, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, sqlArgs, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		Where(pred, args...).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list actions: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, sqlArgs...); err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}

	actions := make([]domain.Action, len(rows))
	for i, rw := range rows {
		a, err := rw.toDomain()
		if err != nil {
			return nil, err
		}
		actions[i] = a
	}
	return actions, nil
}

// ListByClient returns all actions belonging to the given client, including
// case-level ones.
func (r *Repo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Action, error) {
	return r.list(ctx, sq.Eq{"client_id": clientID})
}

// ListByCase returns all actions bound to the given case.
func (r *Repo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error) {
	return r.list(ctx, sq.Eq{"case_id": caseID})
}

// ListByResponsible returns all actions assigned to the given user.
func (r *Repo) ListByResponsible(ctx context.Context, userID uuid.UUID) ([]domain.Action, error) {
	return r.list(ctx, sq.Eq{"responsible_user_id": userID})
}

// ListOpenByCase returns the not-yet-completed actions bound to a case.
// Client-level actions are excluded, so they never block case closure.
func (r *Repo) ListOpenByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error) {
	return r.list(ctx, sq.And{
		sq.Eq{"case_id": caseID},
		sq.NotEq{"status": domain.ActionStatusCompleted},
	})
}

// ExistsForSessionAndType reports whether the session already generated an
// action of the given type. Soft-deleted actions count: a dismissed auto
// action must not be regenerated on re-save.
func (r *Repo) ExistsForSessionAndType(ctx context.Context, sessionID uuid.UUID, actionType string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select("1").
		From(table).
		Where(sq.Eq{"session_id": sessionID, "action_type": actionType}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build action exists: %w", err)
	}

	var one int
	if err := pgxscan.Get(ctx, q, &one, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("action exists: %w", err)
	}
	return true, nil
}

// Update replaces the mutable fields of an action and returns the new record.
func (r *Repo) Update(ctx context.Context, a *domain.Action) (*domain.Action, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	subTasks, err := marshalSubTasks(a.SubTasks)
	if err != nil {
		return nil, err
	}

	sql, args, err := builder.Update(table).
		Set("client_id", a.ClientID).
		Set("case_id", a.CaseID).
		Set("session_id", a.SessionID).
		Set("action_type", a.ActionType).
		Set("title", a.Title).
		Set("priority", a.Priority).
		Set("responsible_user_id", a.ResponsibleUserID).
		Set("status", a.Status).
		Set("due_date", a.DueDate).
		Set("execution_date", a.ExecutionDate).
		Set("execution_details", a.ExecutionDetails).
		Set("sub_tasks", subTasks).
		Set("notes", a.Notes).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": a.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update action: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "action", a.ID)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SoftDelete marks an action deleted. The record is preserved.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete action: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "action", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("action %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
