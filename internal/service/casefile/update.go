package casefile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// Update edits a case. Transitioning to closed requires the close-case
// capability and passes through the closure guardrail; a case with open
// case-linked actions or open deadlines cannot close.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (*domain.Case, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.EditCase, permission.Record{OwnerID: existing.OwnerID}) {
		return nil, domain.ErrForbidden
	}

	closing := input.Status == domain.CaseStatusClosed && existing.Status != domain.CaseStatusClosed
	if closing {
		if !permission.Can(role, actor.ID, permission.CloseCase, permission.Record{OwnerID: existing.OwnerID}) {
			return nil, domain.ErrForbidden
		}
		check, checkErr := s.closureCheck(ctx, id)
		if checkErr != nil {
			return nil, checkErr
		}
		if !check.OK {
			return nil, closureBlockedError(check)
		}
	}

	oldStatus := existing.Status
	input.apply(existing)
	if err := existing.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Case
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.cases.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update case: %w", updateErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeCase,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes: map[string]any{
				"case_no":    updated.DisplayKey(),
				"old_status": string(oldStatus),
				"new_status": string(updated.Status),
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit update case: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("case updated", "id", updated.ID, "status", updated.Status)
	return updated, nil
}
