// Package mapping implements the decision-action mapping repository using
// PostgreSQL.
package mapping

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

const table = "decision_mappings"

var columns = []string{
	"id", "decision_type", "action_type", "execution_proof", "sub_tasks",
	"requires_next_date", "urgent", "creates_linked_case",
	"created_at", "updated_at",
}

// Repo provides decision-action mapping persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new mapping repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID                uuid.UUID       `db:"id"`
	DecisionType      string          `db:"decision_type"`
	ActionType        string          `db:"action_type"`
	ExecutionProof    string          `db:"execution_proof"`
	SubTasks          json.RawMessage `db:"sub_tasks"`
	RequiresNextDate  bool            `db:"requires_next_date"`
	Urgent            bool            `db:"urgent"`
	CreatesLinkedCase bool            `db:"creates_linked_case"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r row) toDomain() (domain.DecisionActionMapping, error) {
	var subTasks []domain.SubTask
	if len(r.SubTasks) > 0 {
		if err := json.Unmarshal(r.SubTasks, &subTasks); err != nil {
			return domain.DecisionActionMapping{}, fmt.Errorf("unmarshal sub tasks: %w", err)
		}
	}
	return domain.DecisionActionMapping{
		ID:                r.ID,
		DecisionType:      r.DecisionType,
		ActionType:        r.ActionType,
		ExecutionProof:    r.ExecutionProof,
		SubTasks:          subTasks,
		RequiresNextDate:  r.RequiresNextDate,
		Urgent:            r.Urgent,
		CreatesLinkedCase: r.CreatesLinkedCase,
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

// Create inserts a new mapping and returns the persisted record. The partial
// unique index on decision_type surfaces duplicates as ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, m *domain.DecisionActionMapping) (*domain.DecisionActionMapping, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	subTasks, err := marshalSubTasks(m.SubTasks)
	if err != nil {
		return nil, err
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "decision_type", "action_type", "execution_proof", "sub_tasks",
			"requires_next_date", "urgent", "creates_linked_case").
		Values(m.ID, m.DecisionType, m.ActionType, m.ExecutionProof, subTasks,
			m.RequiresNextDate, m.Urgent, m.CreatesLinkedCase).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert mapping: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "decision mapping", m.ID)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID returns a mapping by ID, excluding soft-deleted records.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DecisionActionMapping, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select mapping: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "decision mapping", id)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByDecisionType returns the active mapping for a decision outcome.
func (r *Repo) GetByDecisionType(ctx context.Context, decisionType string) (*domain.DecisionActionMapping, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"decision_type": decisionType, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select mapping by decision: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "decision mapping", uuid.Nil)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all active mappings ordered by decision type.
func (r *Repo) List(ctx context.Context) ([]domain.DecisionActionMapping, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"deleted": false}).
		OrderBy("decision_type ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list mappings: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	mappings := make([]domain.DecisionActionMapping, len(rows))
	for i, rw := range rows {
		m, err := rw.toDomain()
		if err != nil {
			return nil, err
		}
		mappings[i] = m
	}
	return mappings, nil
}

// CountActive returns the number of active (not soft-deleted) mappings.
func (r *Repo) CountActive(ctx context.Context) (int, error) {
	return r.count(ctx, sq.Eq{"deleted": false})
}

// CountAll returns the number of mappings including soft-deleted ones.
// Deleted mappings still count when deciding whether the defaults were ever
// seeded, so a deliberately removed default is not resurrected.
func (r *Repo) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, nil)
}

func (r *Repo) count(ctx context.Context, pred any) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sel := builder.Select("count(*)").From(table)
	if pred != nil {
		sel = sel.Where(pred)
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count mappings: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, q, &count, sql, args...); err != nil {
		return 0, fmt.Errorf("count mappings: %w", err)
	}
	return count, nil
}

// Update replaces the mutable fields of a mapping and returns the new record.
func (r *Repo) Update(ctx context.Context, m *domain.DecisionActionMapping) (*domain.DecisionActionMapping, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	subTasks, err := marshalSubTasks(m.SubTasks)
	if err != nil {
		return nil, err
	}

	sql, args, err := builder.Update(table).
		Set("decision_type", m.DecisionType).
		Set("action_type", m.ActionType).
		Set("execution_proof", m.ExecutionProof).
		Set("sub_tasks", subTasks).
		Set("requires_next_date", m.RequiresNextDate).
		Set("urgent", m.Urgent).
		Set("creates_linked_case", m.CreatesLinkedCase).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": m.ID, "deleted": false}).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update mapping: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "decision mapping", m.ID)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SoftDelete marks a mapping deleted. The record is preserved so seeding
// never brings a removed default back.
func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Update(table).
		Set("deleted", true).
		Set("deleted_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete mapping: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "decision mapping", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decision mapping %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
