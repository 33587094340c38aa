package action

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// CreateInput holds the fields of a manually created action.
type CreateInput struct {
	ClientID          uuid.UUID
	CaseID            *uuid.UUID
	ActionType        string
	Title             string
	Priority          domain.Priority
	ResponsibleUserID uuid.UUID
	DueDate           *time.Time
	SubTasks          []domain.SubTask
	Notes             string
}

// Create adds a manual action. Partner only: action definitions are the
// partner's to shape, other roles record progress.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Action, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.CanEditActions(role) {
		return nil, domain.ErrForbidden
	}

	if err := validateCreate(input); err != nil {
		return nil, err
	}

	if input.CaseID != nil {
		if err := s.checkCaseClient(ctx, *input.CaseID, input.ClientID); err != nil {
			return nil, err
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	a := &domain.Action{
		ID:                uuid.New(),
		ClientID:          input.ClientID,
		CaseID:            input.CaseID,
		ActionType:        input.ActionType,
		Title:             input.Title,
		Priority:          priority,
		ResponsibleUserID: input.ResponsibleUserID,
		Status:            domain.ActionStatusOpen,
		DueDate:           input.DueDate,
		SubTasks:          input.SubTasks,
		Notes:             input.Notes,
	}

	var created *domain.Action
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.actions.Create(txCtx, a)
		if createErr != nil {
			return fmt.Errorf("create action: %w", createErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeAction,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"action_type": created.ActionType,
				"client_id":   created.ClientID.String(),
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create action: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("action created", "id", created.ID, "action_type", created.ActionType)
	return created, nil
}

func validateCreate(input CreateInput) error {
	var errs []domain.FieldError
	if input.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "client is required"})
	}
	if input.ActionType == "" {
		errs = append(errs, domain.FieldError{Field: "action_type", Message: "action type is required"})
	}
	if input.ResponsibleUserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "responsible_user_id", Message: "responsible lawyer is required"})
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "invalid priority"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// checkCaseClient verifies the case and client belong together.
func (s *Service) checkCaseClient(ctx context.Context, caseID, clientID uuid.UUID) error {
	kase, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}
	if !kase.HasClient(clientID) {
		return domain.NewValidationError("case_id", "the selected case does not belong to the selected client")
	}
	return nil
}
