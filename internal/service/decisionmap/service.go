// Package decisionmap manages the decision-to-action mapping table that
// drives the session workflow: which follow-up action a session decision
// generates, whether it carries sub-tasks, and whether the decision demands a
// next session date.
package decisionmap

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

// seededKey is the settings flag that marks the defaults as already seeded.
// Once set, the defaults are never re-inserted, so a deliberately deleted
// mapping stays gone.
const seededKey = "decision_map_seeded"

type mappingRepo interface {
	Create(ctx context.Context, m *domain.DecisionActionMapping) (*domain.DecisionActionMapping, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DecisionActionMapping, error)
	GetByDecisionType(ctx context.Context, decisionType string) (*domain.DecisionActionMapping, error)
	List(ctx context.Context) ([]domain.DecisionActionMapping, error)
	CountActive(ctx context.Context) (int, error)
	Update(ctx context.Context, m *domain.DecisionActionMapping) (*domain.DecisionActionMapping, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type settingRepo interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements decision-action mapping management.
type Service struct {
	log      *slog.Logger
	mappings mappingRepo
	settings settingRepo
	audit    auditRepo
	tx       txManager
}

// NewService creates a new decision mapping service.
func NewService(logger *slog.Logger, mappings mappingRepo, settings settingRepo, audit auditRepo, tx txManager) *Service {
	return &Service{
		log:      logger.With("service", "decisionmap"),
		mappings: mappings,
		settings: settings,
		audit:    audit,
		tx:       tx,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}

func requireAdmin(ctx context.Context) (ctxutil.Actor, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return ctxutil.Actor{}, err
	}
	if !permission.Can(role, actor.ID, permission.AdminConfig, permission.Record{}) {
		return ctxutil.Actor{}, domain.ErrForbidden
	}
	return actor, nil
}
