// Package session implements the session lifecycle: recording hearing
// outcomes, the open/closed state machine, and the automatic follow-ups a
// recorded decision generates.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/decisionmap"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type sessionRepo interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Session, error)
	ExistsForCaseDate(ctx context.Context, caseID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, s *domain.Session) (*domain.Session, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type caseRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
}

type actionRepo interface {
	Create(ctx context.Context, a *domain.Action) (*domain.Action, error)
	ExistsForSessionAndType(ctx context.Context, sessionID uuid.UUID, actionType string) (bool, error)
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type decisionResolver interface {
	Resolve(ctx context.Context, decisionType string) (decisionmap.Resolution, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements session business logic.
type Service struct {
	log       *slog.Logger
	sessions  sessionRepo
	cases     caseRepo
	actions   actionRepo
	audit     auditRepo
	decisions decisionResolver
	tx        txManager
}

// NewService creates a new session service.
func NewService(
	logger *slog.Logger,
	sessions sessionRepo,
	cases caseRepo,
	actions actionRepo,
	audit auditRepo,
	decisions decisionResolver,
	tx txManager,
) *Service {
	return &Service{
		log:       logger.With("service", "session"),
		sessions:  sessions,
		cases:     cases,
		actions:   actions,
		audit:     audit,
		decisions: decisions,
		tx:        tx,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}
