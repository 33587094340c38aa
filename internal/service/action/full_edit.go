package action

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// auditedFields is the deterministic order field changes are diffed and
// logged in.
var auditedFields = []string{
	"action_type", "title", "due_date", "responsible_user_id", "priority",
	"notes", "client_id", "case_id", "execution_date", "execution_details",
}

// FullEditInput holds the complete replacement state of an action. Every
// field is written; changes to sensitive fields require EditReason.
type FullEditInput struct {
	ActionType        string
	Title             string
	Priority          domain.Priority
	ClientID          uuid.UUID
	CaseID            *uuid.UUID
	ResponsibleUserID uuid.UUID
	DueDate           *time.Time
	Notes             string
	ExecutionDate     *time.Time
	ExecutionDetails  string
	EditReason        string
}

// FullEdit replaces an action's definition. Partner only. Each changed field
// produces one field-change audit record; changing a sensitive field without
// an edit reason is rejected. The client link can be moved but never cleared.
func (s *Service) FullEdit(ctx context.Context, id uuid.UUID, input FullEditInput) (*domain.Action, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.CanEditActions(role) {
		return nil, domain.ErrForbidden
	}

	existing, err := s.actions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Execution proof is only editable on completed actions; for the rest it
	// stays whatever the progress flow recorded.
	if existing.Status != domain.ActionStatusCompleted {
		input.ExecutionDate = existing.ExecutionDate
		input.ExecutionDetails = existing.ExecutionDetails
	}

	if err := validateFullEdit(existing, input); err != nil {
		return nil, err
	}

	if input.CaseID != nil {
		if err := s.checkCaseClient(ctx, *input.CaseID, input.ClientID); err != nil {
			return nil, err
		}
	}

	changes := diffFields(existing, input)
	if sensitiveChanged(changes) && input.EditReason == "" {
		return nil, domain.NewValidationError("edit_reason", "an edit reason is required when changing sensitive fields")
	}
	for i := range changes {
		if changes[i].Sensitive {
			changes[i].EditReason = input.EditReason
		}
	}

	existing.ActionType = input.ActionType
	existing.Title = input.Title
	existing.Priority = input.Priority
	existing.ClientID = input.ClientID
	existing.CaseID = input.CaseID
	existing.ResponsibleUserID = input.ResponsibleUserID
	existing.DueDate = input.DueDate
	existing.Notes = input.Notes
	existing.ExecutionDate = input.ExecutionDate
	existing.ExecutionDetails = input.ExecutionDetails

	var updated *domain.Action
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.actions.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update action: %w", updateErr)
		}

		for _, fc := range changes {
			_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
				ActorID:    actor.ID,
				EntityType: domain.EntityTypeAction,
				EntityID:   &updated.ID,
				Action:     domain.AuditActionFieldChange,
				Changes:    fc.ToChanges(),
			})
			if auditErr != nil {
				return fmt.Errorf("audit field change %q: %w", fc.Field, auditErr)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("action edited", "id", updated.ID, "changed_fields", len(changes))
	return updated, nil
}

func validateFullEdit(existing *domain.Action, input FullEditInput) error {
	var errs []domain.FieldError
	if input.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "the client link cannot be removed, only moved"})
	}
	if input.ActionType == "" {
		errs = append(errs, domain.FieldError{Field: "action_type", Message: "action type is required"})
	}
	if input.ResponsibleUserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "responsible_user_id", Message: "responsible lawyer is required"})
	}
	if !input.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "invalid priority"})
	}
	if existing.Status == domain.ActionStatusCompleted {
		if input.ExecutionDate == nil {
			errs = append(errs, domain.FieldError{Field: "execution_date", Message: "a completed action keeps its execution date"})
		}
		if input.ExecutionDetails == "" {
			errs = append(errs, domain.FieldError{Field: "execution_details", Message: "a completed action keeps its execution details"})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// diffFields compares old and new field values and returns one FieldChange
// per difference, in auditedFields order.
func diffFields(old *domain.Action, input FullEditInput) []domain.FieldChange {
	oldVals := map[string]string{
		"action_type":         old.ActionType,
		"title":               old.Title,
		"due_date":            formatDate(old.DueDate),
		"responsible_user_id": old.ResponsibleUserID.String(),
		"priority":            string(old.Priority),
		"notes":               old.Notes,
		"client_id":           old.ClientID.String(),
		"case_id":             formatID(old.CaseID),
		"execution_date":      formatDate(old.ExecutionDate),
		"execution_details":   old.ExecutionDetails,
	}
	newVals := map[string]string{
		"action_type":         input.ActionType,
		"title":               input.Title,
		"due_date":            formatDate(input.DueDate),
		"responsible_user_id": input.ResponsibleUserID.String(),
		"priority":            string(input.Priority),
		"notes":               input.Notes,
		"client_id":           input.ClientID.String(),
		"case_id":             formatID(input.CaseID),
		"execution_date":      formatDate(input.ExecutionDate),
		"execution_details":   input.ExecutionDetails,
	}

	var changes []domain.FieldChange
	for _, field := range auditedFields {
		if oldVals[field] == newVals[field] {
			continue
		}
		changes = append(changes, domain.FieldChange{
			Field:      field,
			FieldLabel: domain.ActionFieldLabels[field],
			OldValue:   oldVals[field],
			NewValue:   newVals[field],
			Sensitive:  domain.SensitiveActionFields[field],
		})
	}
	return changes
}

func sensitiveChanged(changes []domain.FieldChange) bool {
	for _, fc := range changes {
		if fc.Sensitive {
			return true
		}
	}
	return false
}
