// Package deadline implements statutory countdown windows: creation,
// completion with a mandatory note, and expiry of windows whose end date
// passed.
package deadline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type deadlineRepo interface {
	Create(ctx context.Context, d *domain.Deadline) (*domain.Deadline, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deadline, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Deadline, error)
	Update(ctx context.Context, d *domain.Deadline) (*domain.Deadline, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements deadline business logic.
type Service struct {
	log       *slog.Logger
	deadlines deadlineRepo
	audit     auditRepo
	tx        txManager
	now       func() time.Time
}

// NewService creates a new deadline service.
func NewService(logger *slog.Logger, deadlines deadlineRepo, audit auditRepo, tx txManager) *Service {
	return &Service{
		log:       logger.With("service", "deadline"),
		deadlines: deadlines,
		audit:     audit,
		tx:        tx,
		now:       time.Now,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}

// CreateInput holds the fields of a new deadline.
type CreateInput struct {
	CaseID            uuid.UUID
	DeadlineType      string
	StartDate         time.Time
	EndDate           time.Time
	ResponsibleUserID uuid.UUID
}

// Create opens a new deadline window on a case.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Deadline, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.CreateDeadline, permission.Record{}) {
		return nil, domain.ErrForbidden
	}

	d := &domain.Deadline{
		ID:                uuid.New(),
		CaseID:            input.CaseID,
		DeadlineType:      input.DeadlineType,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		ResponsibleUserID: input.ResponsibleUserID,
		Status:            domain.DeadlineStatusOpen,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Deadline
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.deadlines.Create(txCtx, d)
		if createErr != nil {
			return fmt.Errorf("create deadline: %w", createErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeDeadline,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"deadline_type": created.DeadlineType,
				"end_date":      created.EndDate.Format(time.DateOnly),
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create deadline: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("deadline created", "id", created.ID, "case_id", created.CaseID)
	return created, nil
}

// Complete closes a deadline with a mandatory completion note.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, note string) (*domain.Deadline, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.deadlines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.CompleteAction, permission.Record{ResponsibleUserID: existing.ResponsibleUserID}) {
		return nil, domain.ErrForbidden
	}

	if existing.Status != domain.DeadlineStatusOpen {
		return nil, domain.NewValidationError("status", "only an open deadline can be completed")
	}
	if note == "" {
		return nil, domain.NewValidationError("completion_note", "a completion note is required")
	}

	existing.Status = domain.DeadlineStatusCompleted
	existing.CompletionNote = note

	var updated *domain.Deadline
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.deadlines.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("complete deadline: %w", updateErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeDeadline,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionComplete,
			Changes:    map[string]any{"completion_note": note},
		})
		if auditErr != nil {
			return fmt.Errorf("audit complete deadline: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// MarkExpired flips every open deadline whose end date has passed to expired
// and reports how many were flipped. Run periodically, it needs no actor.
func (s *Service) MarkExpired(ctx context.Context) (int64, error) {
	n, err := s.deadlines.MarkExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark expired deadlines: %w", err)
	}
	if n > 0 {
		s.log.Info("deadlines expired", "count", n)
	}
	return n, nil
}

// Get returns one deadline by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Deadline, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.deadlines.GetByID(ctx, id)
}

// ListByCase returns a case's deadlines ordered by end date.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Deadline, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.deadlines.ListByCase(ctx, caseID)
}

// Delete soft-deletes a deadline. Partner only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.DeleteRecords, permission.Record{}) {
		return domain.ErrForbidden
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.deadlines.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeDeadline,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete deadline: %w", auditErr)
		}
		return nil
	})
}
