package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
)

// Get returns one session by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.sessions.GetByID(ctx, id)
}

// ListByCase returns the sessions of a case ordered by date.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Session, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Delete soft-deletes a session. Only roles holding the delete capability
// (partners) may; the record is preserved for the audit trail.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.DeleteRecords, permission.Record{}) {
		return domain.ErrForbidden
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sessions.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeSession,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete session: %w", auditErr)
		}
		return nil
	})
}
