package decisionmap

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// Resolution is the workflow ruling for one decision outcome.
type Resolution struct {
	// Mapping is nil for unmapped decisions.
	Mapping *domain.DecisionActionMapping
	// RequiresNextDate defaults to true for unmapped decisions: an unknown
	// decision must not let a case silently lose its next session.
	RequiresNextDate bool
	// CreatesLinkedCase defaults to false for unmapped decisions.
	CreatesLinkedCase bool
}

// Resolve looks up the workflow ruling for a decision outcome. Unknown
// decisions resolve to the fail-safe default rather than an error.
func (s *Service) Resolve(ctx context.Context, decisionType string) (Resolution, error) {
	if decisionType == "" {
		return Resolution{RequiresNextDate: true}, nil
	}

	if err := s.ensureSeeded(ctx); err != nil {
		return Resolution{}, err
	}

	m, err := s.mappings.GetByDecisionType(ctx, decisionType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Resolution{RequiresNextDate: true}, nil
		}
		return Resolution{}, fmt.Errorf("resolve decision %q: %w", decisionType, err)
	}

	return Resolution{
		Mapping:           m,
		RequiresNextDate:  m.RequiresNextDate,
		CreatesLinkedCase: m.CreatesLinkedCase,
	}, nil
}
