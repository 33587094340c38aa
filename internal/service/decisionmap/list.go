package decisionmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// List returns all active mappings, seeding the office defaults first if the
// table was never populated.
func (s *Service) List(ctx context.Context) ([]domain.DecisionActionMapping, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	mappings, err := s.mappings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return mappings, nil
}

// ensureSeeded inserts the default mappings exactly once per installation.
// The settings flag, not the row count, is the source of truth: an admin who
// deletes every default must not see them come back.
func (s *Service) ensureSeeded(ctx context.Context) error {
	var seeded bool
	err := s.settings.Get(ctx, seededKey, &seeded)
	if err == nil && seeded {
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("read seeded flag: %w", err)
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.mappings.CountActive(txCtx)
		if err != nil {
			return fmt.Errorf("count mappings: %w", err)
		}
		if count == 0 {
			defaults := domain.DefaultDecisionActionMappings()
			for i := range defaults {
				if _, err := s.mappings.Create(txCtx, &defaults[i]); err != nil {
					return fmt.Errorf("seed mapping %q: %w", defaults[i].DecisionType, err)
				}
			}
			s.log.Info("seeded default decision mappings", "count", len(defaults))
		}
		if err := s.settings.Set(txCtx, seededKey, true); err != nil {
			return fmt.Errorf("set seeded flag: %w", err)
		}
		return nil
	})
}
