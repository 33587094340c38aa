package action

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// ProgressInput is the limited edit surface available outside the partner
// role: status, progress notes, and the execution proof needed to complete.
type ProgressInput struct {
	Status           domain.ActionStatus
	Notes            string
	ExecutionDate    *time.Time
	ExecutionDetails string
}

// UpdateProgress moves an action along its lifecycle. Completed actions are
// terminal. Reaching completed requires an execution date and details.
func (s *Service) UpdateProgress(ctx context.Context, id uuid.UUID, input ProgressInput) (*domain.Action, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.actions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := permission.Record{ResponsibleUserID: existing.ResponsibleUserID}
	if existing.CaseID != nil {
		kase, err := s.cases.GetByID(ctx, *existing.CaseID)
		if err != nil {
			return nil, fmt.Errorf("load case: %w", err)
		}
		rec.OwnerID = kase.OwnerID
	}
	if !permission.Can(role, actor.ID, permission.CompleteAction, rec) {
		return nil, domain.ErrForbidden
	}

	if existing.Status.IsTerminal() {
		return nil, domain.NewValidationError("status", "a completed action cannot be reopened or modified")
	}
	if !input.Status.IsValid() {
		return nil, domain.NewValidationError("status", "invalid status")
	}

	completing := input.Status == domain.ActionStatusCompleted
	if completing {
		var errs []domain.FieldError
		if input.ExecutionDate == nil {
			errs = append(errs, domain.FieldError{Field: "execution_date", Message: "execution date is required to complete the action"})
		}
		if input.ExecutionDetails == "" {
			errs = append(errs, domain.FieldError{Field: "execution_details", Message: "execution details are required to complete the action"})
		}
		if len(errs) > 0 {
			return nil, domain.NewValidationErrors(errs)
		}
	}

	oldStatus := existing.Status
	existing.Status = input.Status
	existing.Notes = input.Notes
	if completing {
		existing.ExecutionDate = input.ExecutionDate
		existing.ExecutionDetails = input.ExecutionDetails
	}

	auditAction := domain.AuditActionStatusChange
	if completing {
		auditAction = domain.AuditActionComplete
	}

	var updated *domain.Action
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.actions.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update action: %w", updateErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeAction,
			EntityID:   &updated.ID,
			Action:     auditAction,
			Changes: map[string]any{
				"old_status": string(oldStatus),
				"new_status": string(updated.Status),
				"notes":      updated.Notes,
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit progress: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("action progress updated", "id", updated.ID, "status", updated.Status)
	return updated, nil
}

// SetSubTask marks one checklist step complete or not.
func (s *Service) SetSubTask(ctx context.Context, id uuid.UUID, index int, completed bool) (*domain.Action, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.actions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := permission.Record{ResponsibleUserID: existing.ResponsibleUserID}
	if existing.CaseID != nil {
		kase, err := s.cases.GetByID(ctx, *existing.CaseID)
		if err != nil {
			return nil, fmt.Errorf("load case: %w", err)
		}
		rec.OwnerID = kase.OwnerID
	}
	if !permission.Can(role, actor.ID, permission.CompleteAction, rec) {
		return nil, domain.ErrForbidden
	}

	if existing.Status.IsTerminal() {
		return nil, domain.NewValidationError("status", "a completed action cannot be reopened or modified")
	}
	if index < 0 || index >= len(existing.SubTasks) {
		return nil, domain.NewValidationError("sub_tasks", "no such sub task")
	}

	existing.SubTasks[index].Completed = completed

	var updated *domain.Action
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.actions.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update action: %w", updateErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeAction,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes: map[string]any{
				"sub_task":  updated.SubTasks[index].Title,
				"completed": completed,
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit sub task: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}
