package casefile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

const (
	// prosecutionStage is the criminal sub-stage whose first session is an
	// investigation rather than a hearing.
	prosecutionStage = "تحقيقات نيابة"

	sessionTypeInvestigation = "تحقيق"
	sessionTypeHearing       = "جلسة استماع"

	autoFirstSessionNote = "جلسة أولى – تم إنشاؤها تلقائياً"
)

// CreateResult carries the new case together with its automatically created
// first session.
type CreateResult struct {
	Case         *domain.Case
	FirstSession *domain.Session
}

// Create opens a new case and its first session in one transaction. The first
// session lands on the case's first-session date; criminal cases still at the
// prosecution stage get an investigation session, everything else a hearing.
func (s *Service) Create(ctx context.Context, input Input) (*CreateResult, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.CreateCase, permission.Record{}) {
		return nil, domain.ErrForbidden
	}

	c := &domain.Case{ID: uuid.New()}
	input.apply(c)
	if c.Status == "" {
		c.Status = domain.CaseStatusActive
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &CreateResult{}
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		created, createErr := s.cases.Create(txCtx, c)
		if createErr != nil {
			return fmt.Errorf("create case: %w", createErr)
		}
		result.Case = created

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeCase,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"case_no": created.DisplayKey(),
				"status":  string(created.Status),
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create case: %w", auditErr)
		}

		first, sessErr := s.sessions.Create(txCtx, &domain.Session{
			ID:          uuid.New(),
			CaseID:      created.ID,
			Date:        created.FirstSessionDate,
			SessionType: firstSessionType(created),
			Status:      domain.SessionStatusOpen,
			Notes:       autoFirstSessionNote,
			Auto:        true,
		})
		if sessErr != nil {
			return fmt.Errorf("create first session: %w", sessErr)
		}
		result.FirstSession = first

		_, auditErr = s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeSession,
			EntityID:   &first.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"auto":    true,
				"case_id": created.ID.String(),
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit first session: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("case created",
		"id", result.Case.ID,
		"case_no", result.Case.DisplayKey(),
		"first_session_id", result.FirstSession.ID,
	)
	return result, nil
}

func firstSessionType(c *domain.Case) string {
	if c.CaseType == domain.CaseTypeCriminal && c.CriminalStageType == prosecutionStage {
		return sessionTypeInvestigation
	}
	return sessionTypeHearing
}
