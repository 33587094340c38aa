// Package audit implements the append-only audit trail repository using
// PostgreSQL. Records are inserted and read, never updated or deleted.
package audit

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

const table = "audit_log"

var columns = []string{
	"id", "actor_id", "entity_type", "entity_id", "action", "changes", "created_at",
}

// Repo provides audit trail persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID         uuid.UUID       `db:"id"`
	ActorID    uuid.UUID       `db:"actor_id"`
	EntityType string          `db:"entity_type"`
	EntityID   *uuid.UUID      `db:"entity_id"`
	Action     string          `db:"action"`
	Changes    json.RawMessage `db:"changes"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r row) toDomain() (domain.AuditRecord, error) {
	var changes map[string]any
	if len(r.Changes) > 0 {
		if err := json.Unmarshal(r.Changes, &changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("unmarshal audit changes: %w", err)
		}
	}
	return domain.AuditRecord{
		ID:         r.ID,
		ActorID:    r.ActorID,
		EntityType: domain.EntityType(r.EntityType),
		EntityID:   r.EntityID,
		Action:     domain.AuditAction(r.Action),
		Changes:    changes,
		CreatedAt:  r.CreatedAt,
	}, nil
}

// Create appends an audit record. Called inside the same transaction as the
// mutation it describes, so both commit or neither does.
func (r *Repo) Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	var changes []byte
	if rec.Changes != nil {
		raw, err := json.Marshal(rec.Changes)
		if err != nil {
			return nil, fmt.Errorf("marshal audit changes: %w", err)
		}
		changes = raw
	}

	sql, args, err := builder.Insert(table).
		Columns("id", "actor_id", "entity_type", "entity_id", "action", "changes").
		Values(rec.ID, rec.ActorID, rec.EntityType, rec.EntityID, rec.Action, changes).
		Suffix("RETURNING " + postgres.JoinColumns(columns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert audit record: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit record", rec.ID)
	}

	out, err := rw.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByEntity returns the audit history of one entity, newest first.
func (r *Repo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error) {
	return r.list(ctx, sq.Eq{"entity_type": entityType, "entity_id": entityID}, 0)
}

// Recent returns the latest audit records across all entities.
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	return r.list(ctx, nil, uint64(limit))
}

func (r *Repo) list(ctx context.Context, pred any, limit uint64) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sel := builder.Select(columns...).
		From(table).
		OrderBy("created_at DESC", "id DESC")
	if pred != nil {
		sel = sel.Where(pred)
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit records: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	records := make([]domain.AuditRecord, len(rows))
	for i, rw := range rows {
		rec, err := rw.toDomain()
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}
