// Package audit is the read side of the audit trail.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/config"
	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type auditRepo interface {
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

// Service exposes audit trail queries.
type Service struct {
	log     *slog.Logger
	records auditRepo
	cfg     config.AuditConfig
}

// NewService creates a new audit query service.
func NewService(logger *slog.Logger, records auditRepo, cfg config.AuditConfig) *Service {
	return &Service{
		log:     logger.With("service", "audit"),
		records: records,
		cfg:     cfg,
	}
}

func requireActor(ctx context.Context) error {
	if _, ok := ctxutil.ActorFromCtx(ctx); !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// History returns the audit trail of one entity, newest first.
func (s *Service) History(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error) {
	if err := requireActor(ctx); err != nil {
		return nil, err
	}
	if !entityType.IsValid() {
		return nil, domain.NewValidationError("entity_type", "invalid entity type")
	}
	return s.records.ListByEntity(ctx, entityType, entityID)
}

// Recent returns the newest audit records across all entities. limit <= 0
// falls back to the configured default; limits above the configured maximum
// are clamped.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if err := requireActor(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return s.records.Recent(ctx, limit)
}
