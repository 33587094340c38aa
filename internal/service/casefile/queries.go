package casefile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// Get returns one case by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.cases.GetByID(ctx, id)
}

// List returns cases visible to the caller. Roles without the view-all grant
// see only the cases they own.
func (s *Service) List(ctx context.Context) ([]domain.Case, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var ownerFilter *uuid.UUID
	if !permission.Can(role, actor.ID, permission.ViewAll, permission.Record{}) {
		ownerFilter = &actor.ID
	}
	return s.cases.List(ctx, ownerFilter)
}

// ListByClient returns the cases a client is bound to.
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Case, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.cases.ListByClient(ctx, clientID)
}

// Delete soft-deletes a case. Partner only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.DeleteRecords, permission.Record{}) {
		return domain.ErrForbidden
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.cases.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeCase,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete case: %w", auditErr)
		}
		return nil
	})
}
