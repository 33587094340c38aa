package action

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// Get returns one action by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.actions.GetByID(ctx, id)
}

// ListByClient returns a client's actions, case-level ones included.
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Action, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.actions.ListByClient(ctx, clientID)
}

// ListByCase returns the actions bound to a case.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.actions.ListByCase(ctx, caseID)
}

// ListMine returns the actions assigned to the calling user.
func (s *Service) ListMine(ctx context.Context) ([]domain.Action, error) {
	actor, _, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return s.actions.ListByResponsible(ctx, actor.ID)
}

// History returns the full audit trail of one action, newest first.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]domain.AuditRecord, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}

	if _, err := s.actions.GetByID(ctx, id); err != nil {
		return nil, err
	}

	records, err := s.audit.ListByEntity(ctx, domain.EntityTypeAction, id)
	if err != nil {
		return nil, fmt.Errorf("action history: %w", err)
	}
	return records, nil
}

// Delete soft-deletes an action. Partner only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.DeleteRecords, permission.Record{}) {
		return domain.ErrForbidden
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.actions.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeAction,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete action: %w", auditErr)
		}
		return nil
	})
}
