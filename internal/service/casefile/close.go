package casefile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// ClosureCheck is the result of the closure guardrail.
type ClosureCheck struct {
	OK bool
	// BlockingReasons holds one human-readable reason per blocking category.
	BlockingReasons []string
}

// CanClose reports whether a case may transition to closed. Open case-linked
// actions and open deadlines block the transition; client-level actions never
// count.
func (s *Service) CanClose(ctx context.Context, caseID uuid.UUID) (*ClosureCheck, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.closureCheck(ctx, caseID)
}

func (s *Service) closureCheck(ctx context.Context, caseID uuid.UUID) (*ClosureCheck, error) {
	openActions, err := s.actions.ListOpenByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("open actions: %w", err)
	}
	openDeadlines, err := s.deadlines.CountOpenByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("open deadlines: %w", err)
	}

	check := &ClosureCheck{OK: true}
	if n := len(openActions); n > 0 {
		check.OK = false
		check.BlockingReasons = append(check.BlockingReasons,
			fmt.Sprintf("لا يمكن إغلاق القضية: يوجد %d إجراء مفتوح مرتبط بها", n))
	}
	if openDeadlines > 0 {
		check.OK = false
		check.BlockingReasons = append(check.BlockingReasons,
			fmt.Sprintf("لا يمكن إغلاق القضية: يوجد %d موعد نهائي مفتوح", openDeadlines))
	}
	return check, nil
}

func closureBlockedError(check *ClosureCheck) error {
	errs := make([]domain.FieldError, 0, len(check.BlockingReasons))
	for _, reason := range check.BlockingReasons {
		errs = append(errs, domain.FieldError{Field: "status", Message: reason})
	}
	return domain.NewValidationErrors(errs)
}
