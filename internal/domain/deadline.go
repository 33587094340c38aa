package domain

import (
	"time"

	"github.com/google/uuid"
)

// Deadline is a statutory countdown window tied to a case.
type Deadline struct {
	ID                uuid.UUID
	CaseID            uuid.UUID
	DeadlineType      string
	StartDate         time.Time
	EndDate           time.Time
	ResponsibleUserID uuid.UUID
	Status            DeadlineStatus
	CompletionNote    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks required deadline fields.
func (d *Deadline) Validate() error {
	var errs []FieldError
	if d.CaseID == uuid.Nil {
		errs = append(errs, FieldError{Field: "case_id", Message: "case is required"})
	}
	if d.DeadlineType == "" {
		errs = append(errs, FieldError{Field: "deadline_type", Message: "deadline type is required"})
	}
	if d.StartDate.IsZero() {
		errs = append(errs, FieldError{Field: "start_date", Message: "start date is required"})
	}
	if d.EndDate.IsZero() {
		errs = append(errs, FieldError{Field: "end_date", Message: "end date is required"})
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		errs = append(errs, FieldError{Field: "end_date", Message: "end date must not precede start date"})
	}
	if d.ResponsibleUserID == uuid.Nil {
		errs = append(errs, FieldError{Field: "responsible_user_id", Message: "responsible user is required"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// IsOverdue reports whether the deadline's end date has passed while it is
// still open.
func (d *Deadline) IsOverdue(now time.Time) bool {
	return d.Status == DeadlineStatusOpen && d.EndDate.Before(now)
}
