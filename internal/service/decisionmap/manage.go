package decisionmap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// CreateInput holds the fields of a new decision mapping.
type CreateInput struct {
	DecisionType      string
	ActionType        string
	ExecutionProof    string
	SubTasks          []domain.SubTask
	RequiresNextDate  bool
	Urgent            bool
	CreatesLinkedCase bool
}

// Create adds a mapping. Partner only.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.DecisionActionMapping, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	m := &domain.DecisionActionMapping{
		ID:                uuid.New(),
		DecisionType:      input.DecisionType,
		ActionType:        input.ActionType,
		ExecutionProof:    input.ExecutionProof,
		SubTasks:          input.SubTasks,
		RequiresNextDate:  input.RequiresNextDate,
		Urgent:            input.Urgent,
		CreatesLinkedCase: input.CreatesLinkedCase,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var created *domain.DecisionActionMapping
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.mappings.Create(txCtx, m)
		if createErr != nil {
			return fmt.Errorf("create mapping: %w", createErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeMapping,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes:    map[string]any{"decision_type": created.DecisionType, "action_type": created.ActionType},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create mapping: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("decision mapping created", "id", created.ID, "decision_type", created.DecisionType)
	return created, nil
}

// UpdateInput holds the replacement fields of an existing mapping.
type UpdateInput struct {
	DecisionType      string
	ActionType        string
	ExecutionProof    string
	SubTasks          []domain.SubTask
	RequiresNextDate  bool
	Urgent            bool
	CreatesLinkedCase bool
}

// Update replaces a mapping's fields. Partner only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.DecisionActionMapping, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.DecisionType = input.DecisionType
	existing.ActionType = input.ActionType
	existing.ExecutionProof = input.ExecutionProof
	existing.SubTasks = input.SubTasks
	existing.RequiresNextDate = input.RequiresNextDate
	existing.Urgent = input.Urgent
	existing.CreatesLinkedCase = input.CreatesLinkedCase

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.DecisionActionMapping
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.mappings.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update mapping: %w", updateErr)
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeMapping,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes:    map[string]any{"decision_type": updated.DecisionType},
		})
		if auditErr != nil {
			return fmt.Errorf("audit update mapping: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return updated, nil
}

// Delete soft-deletes a mapping. Partner only. The last active mapping cannot
// be removed: the session workflow needs at least one ruling to offer.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.mappings.CountActive(txCtx)
		if err != nil {
			return fmt.Errorf("count mappings: %w", err)
		}
		if count <= 1 {
			return domain.NewValidationError("decision_type", "the last decision mapping cannot be deleted")
		}

		if err := s.mappings.SoftDelete(txCtx, id); err != nil {
			return err
		}

		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeMapping,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete mapping: %w", auditErr)
		}
		return nil
	})
}
