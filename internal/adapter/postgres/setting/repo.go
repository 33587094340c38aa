// Package setting implements a small key-value store over the settings table.
// Values are JSON documents.
package setting

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/shaheenlf/slf-backend/internal/adapter/postgres"
	"github.com/shaheenlf/slf-backend/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "settings"

// Repo provides settings persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get unmarshals the value stored under key into dst. Returns
// domain.ErrNotFound when the key is absent.
func (r *Repo) Get(ctx context.Context, key string, dst any) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select("value").
		From(table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build select setting: %w", err)
	}

	var raw json.RawMessage
	if err := pgxscan.Get(ctx, q, &raw, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("get setting %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal setting %q: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (r *Repo) Set(ctx context.Context, key string, value any) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal setting %q: %w", key, err)
	}

	sql, args, err := builder.Insert(table).
		Columns("key", "value").
		Values(key, raw).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert setting: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
