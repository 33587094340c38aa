// Package action implements the action lifecycle: manual creation, the
// partner full edit with field-level auditing, progress updates, and
// completion with execution proof.
package action

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type actionRepo interface {
	Create(ctx context.Context, a *domain.Action) (*domain.Action, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Action, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error)
	ListByResponsible(ctx context.Context, userID uuid.UUID) ([]domain.Action, error)
	Update(ctx context.Context, a *domain.Action) (*domain.Action, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type caseRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements action business logic.
type Service struct {
	log     *slog.Logger
	actions actionRepo
	cases   caseRepo
	audit   auditRepo
	tx      txManager
}

// NewService creates a new action service.
func NewService(logger *slog.Logger, actions actionRepo, cases caseRepo, audit auditRepo, tx txManager) *Service {
	return &Service{
		log:     logger.With("service", "action"),
		actions: actions,
		cases:   cases,
		audit:   audit,
		tx:      tx,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
