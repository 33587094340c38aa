package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// autoNextSessionNote marks placeholder sessions spawned from a recorded
// next-session date.
const autoNextSessionNote = "جلسة تالية – تم إنشاؤها تلقائياً"

// SaveInput holds the fields of a session being recorded or edited.
type SaveInput struct {
	// ID is nil when recording a new session, set when editing.
	ID              *uuid.UUID
	CaseID          uuid.UUID
	Date            time.Time
	SessionType     string
	DecisionOutcome string
	NextSessionDate *time.Time
	// Close requests the open → closed transition.
	Close         bool
	ClosureReason domain.ClosureReason
	Notes         string
}

// SaveResult reports what a save produced beyond the session itself.
type SaveResult struct {
	Session *domain.Session
	// NextSession is the auto-created placeholder, nil when none was needed.
	NextSession *domain.Session
	// GeneratedAction is the action spawned from the decision mapping, nil
	// when the decision is unmapped or the action already existed.
	GeneratedAction *domain.Action
	// LinkedCaseAdvisory is set when the decision suggests creating a linked
	// court case. Creation is left to the user.
	LinkedCaseAdvisory bool
}

// Save records or edits a session, enforcing the decision guardrails and
// generating the follow-ups the decision mapping mandates. The session, its
// placeholder successor, the generated action, and all audit records commit
// in one transaction.
func (s *Service) Save(ctx context.Context, input SaveInput) (*SaveResult, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	kase, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}

	capability := permission.CreateSession
	if input.ID != nil {
		capability = permission.EditSession
	}
	if !permission.Can(role, actor.ID, capability, permission.Record{OwnerID: kase.OwnerID}) {
		return nil, domain.ErrForbidden
	}

	var existing *domain.Session
	if input.ID != nil {
		existing, err = s.sessions.GetByID(ctx, *input.ID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if existing.CaseID != input.CaseID {
			return nil, domain.NewValidationError("case_id", "session belongs to another case")
		}
	}

	resolution, err := s.decisions.Resolve(ctx, input.DecisionOutcome)
	if err != nil {
		return nil, fmt.Errorf("resolve decision: %w", err)
	}

	if err := validateSave(input, resolution.RequiresNextDate); err != nil {
		return nil, err
	}

	result := &SaveResult{}
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		saved, err := s.persistSession(txCtx, actor.ID, input, existing)
		if err != nil {
			return err
		}
		result.Session = saved

		if input.NextSessionDate != nil {
			next, err := s.spawnNextSession(txCtx, actor.ID, saved, *input.NextSessionDate)
			if err != nil {
				return err
			}
			result.NextSession = next
		}

		if resolution.Mapping != nil {
			generated, err := s.generateAction(txCtx, actor.ID, kase, saved, resolution.Mapping, input.NextSessionDate)
			if err != nil {
				return err
			}
			result.GeneratedAction = generated
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	result.LinkedCaseAdvisory = resolution.CreatesLinkedCase && input.ID == nil

	s.log.Info("session saved",
		"session_id", result.Session.ID,
		"case_id", input.CaseID,
		"closed", input.Close,
		"next_session", result.NextSession != nil,
		"generated_action", result.GeneratedAction != nil,
	)
	return result, nil
}

// validateSave enforces the decision guardrails:
// a session needs a date, a type, and a decision outcome; a decision whose
// mapping demands a next date cannot be saved without one; closing without a
// next date needs an enumerated closure reason.
func validateSave(input SaveInput, requiresNextDate bool) error {
	var errs []domain.FieldError
	if input.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "session date is required"})
	}
	if input.SessionType == "" {
		errs = append(errs, domain.FieldError{Field: "session_type", Message: "session type is required"})
	}
	if input.DecisionOutcome == "" {
		if input.Close {
			errs = append(errs, domain.FieldError{Field: "decision_outcome", Message: "a session cannot be closed without a recorded decision"})
		} else {
			errs = append(errs, domain.FieldError{Field: "decision_outcome", Message: "decision outcome is required"})
		}
	}
	if input.DecisionOutcome != "" && requiresNextDate && input.NextSessionDate == nil {
		errs = append(errs, domain.FieldError{Field: "next_session_date", Message: "this decision requires a next session date"})
	}
	if input.Close && !requiresNextDate && input.DecisionOutcome != "" && input.NextSessionDate == nil {
		if input.ClosureReason == "" {
			errs = append(errs, domain.FieldError{Field: "closure_reason", Message: "closing without a next session requires a closure reason"})
		} else if !input.ClosureReason.IsValid() {
			errs = append(errs, domain.FieldError{Field: "closure_reason", Message: "invalid closure reason"})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (s *Service) persistSession(ctx context.Context, actorID uuid.UUID, input SaveInput, existing *domain.Session) (*domain.Session, error) {
	status := domain.SessionStatusOpen
	closureReason := domain.ClosureReason("")
	if input.Close {
		status = domain.SessionStatusClosed
		if input.NextSessionDate == nil {
			closureReason = input.ClosureReason
		}
	} else if existing != nil {
		status = existing.Status
		closureReason = existing.ClosureReason
	}

	if existing != nil {
		existing.Date = input.Date
		existing.SessionType = input.SessionType
		existing.DecisionOutcome = input.DecisionOutcome
		existing.NextSessionDate = input.NextSessionDate
		existing.Status = status
		existing.ClosureReason = closureReason
		existing.Notes = input.Notes

		updated, err := s.sessions.Update(ctx, existing)
		if err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
		if err := s.logSession(ctx, actorID, updated, domain.AuditActionUpdate, false); err != nil {
			return nil, err
		}
		return updated, nil
	}

	created, err := s.sessions.Create(ctx, &domain.Session{
		ID:              uuid.New(),
		CaseID:          input.CaseID,
		Date:            input.Date,
		SessionType:     input.SessionType,
		DecisionOutcome: input.DecisionOutcome,
		NextSessionDate: input.NextSessionDate,
		Status:          status,
		ClosureReason:   closureReason,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.logSession(ctx, actorID, created, domain.AuditActionCreate, false); err != nil {
		return nil, err
	}
	return created, nil
}

// spawnNextSession creates the open placeholder at the recorded next date,
// unless the case already has a session on that date. Re-saving a session is
// therefore idempotent.
func (s *Service) spawnNextSession(ctx context.Context, actorID uuid.UUID, from *domain.Session, date time.Time) (*domain.Session, error) {
	exists, err := s.sessions.ExistsForCaseDate(ctx, from.CaseID, date, &from.ID)
	if err != nil {
		return nil, fmt.Errorf("check next session: %w", err)
	}
	if exists {
		return nil, nil
	}

	next, err := s.sessions.Create(ctx, &domain.Session{
		ID:          uuid.New(),
		CaseID:      from.CaseID,
		Date:        date,
		SessionType: from.SessionType,
		Status:      domain.SessionStatusOpen,
		Notes:       autoNextSessionNote,
		Auto:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("create next session: %w", err)
	}
	if err := s.logSession(ctx, actorID, next, domain.AuditActionCreate, true); err != nil {
		return nil, err
	}
	return next, nil
}

// generateAction creates the mapped follow-up action for the session, unless
// one of that type already exists for it. Soft-deleted actions count as
// existing so a dismissed action is not regenerated.
func (s *Service) generateAction(ctx context.Context, actorID uuid.UUID, kase *domain.Case, saved *domain.Session, m *domain.DecisionActionMapping, dueDate *time.Time) (*domain.Action, error) {
	exists, err := s.actions.ExistsForSessionAndType(ctx, saved.ID, m.ActionType)
	if err != nil {
		return nil, fmt.Errorf("check generated action: %w", err)
	}
	if exists {
		return nil, nil
	}

	priority := domain.PriorityMedium
	if m.Urgent {
		priority = domain.PriorityHigh
	}

	subTasks := make([]domain.SubTask, len(m.SubTasks))
	copy(subTasks, m.SubTasks)

	notes := ""
	if m.ExecutionProof != "" {
		notes = "إثبات التنفيذ المطلوب: " + m.ExecutionProof
	}

	generated, err := s.actions.Create(ctx, &domain.Action{
		ID:                uuid.New(),
		ClientID:          kase.PrimaryClientID,
		CaseID:            &kase.ID,
		SessionID:         &saved.ID,
		ActionType:        m.ActionType,
		Priority:          priority,
		ResponsibleUserID: kase.OwnerID,
		Status:            domain.ActionStatusOpen,
		DueDate:           dueDate,
		SubTasks:          subTasks,
		Notes:             notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create generated action: %w", err)
	}

	_, err = s.audit.Create(ctx, &domain.AuditRecord{
		ActorID:    actorID,
		EntityType: domain.EntityTypeAction,
		EntityID:   &generated.ID,
		Action:     domain.AuditActionCreate,
		Changes: map[string]any{
			"auto":       true,
			"decision":   saved.DecisionOutcome,
			"session_id": saved.ID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("audit generated action: %w", err)
	}
	return generated, nil
}

func (s *Service) logSession(ctx context.Context, actorID uuid.UUID, sess *domain.Session, action domain.AuditAction, auto bool) error {
	changes := map[string]any{
		"date":             sess.Date.Format(time.DateOnly),
		"session_type":     sess.SessionType,
		"decision_outcome": sess.DecisionOutcome,
		"status":           string(sess.Status),
	}
	if auto {
		changes["auto"] = true
	}
	_, err := s.audit.Create(ctx, &domain.AuditRecord{
		ActorID:    actorID,
		EntityType: domain.EntityTypeSession,
		EntityID:   &sess.ID,
		Action:     action,
		Changes:    changes,
	})
	if err != nil {
		return fmt.Errorf("audit session: %w", err)
	}
	return nil
}
