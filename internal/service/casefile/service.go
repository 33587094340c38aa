// Package casefile implements the case aggregate: creation with the automatic
// first session, edits, the closure guardrail, and scoped listing.
package casefile

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type caseRepo interface {
	Create(ctx context.Context, c *domain.Case) (*domain.Case, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Case, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Case, error)
	Update(ctx context.Context, c *domain.Case) (*domain.Case, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type sessionRepo interface {
	Create(ctx context.Context, s *domain.Session) (*domain.Session, error)
}

type actionRepo interface {
	ListOpenByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error)
}

type deadlineRepo interface {
	CountOpenByCase(ctx context.Context, caseID uuid.UUID) (int, error)
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements case business logic.
type Service struct {
	log       *slog.Logger
	cases     caseRepo
	sessions  sessionRepo
	actions   actionRepo
	deadlines deadlineRepo
	audit     auditRepo
	tx        txManager
}

// NewService creates a new case service.
func NewService(
	logger *slog.Logger,
	cases caseRepo,
	sessions sessionRepo,
	actions actionRepo,
	deadlines deadlineRepo,
	audit auditRepo,
	tx txManager,
) *Service {
	return &Service{
		log:       logger.With("service", "casefile"),
		cases:     cases,
		sessions:  sessions,
		actions:   actions,
		deadlines: deadlines,
		audit:     audit,
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

// Input holds the writable fields of a case.
type Input struct {
	CaseNo              string
	Year                string
	StageType           string
	ClientIDs           []uuid.UUID
	PrimaryClientID     uuid.UUID
	ClientRole          string
	OpponentName        string
	OpponentRole        string
	Court               string
	Circuit             string
	CaseType            domain.CaseType
	CriminalStageType   string
	Subject             string
	FirstSessionDate    time.Time
	OwnerID             uuid.UUID
	Status              domain.CaseStatus
	LinkedProsecutionID *uuid.UUID
	Notes               string
}

func (in Input) apply(c *domain.Case) {
	c.CaseNo = in.CaseNo
	c.Year = in.Year
	c.StageType = in.StageType
	c.ClientIDs = in.ClientIDs
	c.PrimaryClientID = in.PrimaryClientID
	c.ClientRole = in.ClientRole
	c.OpponentName = in.OpponentName
	c.OpponentRole = in.OpponentRole
	c.Court = in.Court
	c.Circuit = in.Circuit
	c.CaseType = in.CaseType
	c.CriminalStageType = in.CriminalStageType
	c.Subject = in.Subject
	c.FirstSessionDate = in.FirstSessionDate
	c.OwnerID = in.OwnerID
	c.Status = in.Status
	c.LinkedProsecutionID = in.LinkedProsecutionID
	c.Notes = in.Notes
}
