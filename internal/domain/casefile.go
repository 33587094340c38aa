package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Case is the primary aggregate: one legal matter tracked for one or more
// clients against an opponent.
type Case struct {
	ID                  uuid.UUID
	CaseNo              string
	Year                string
	StageType           string
	ClientIDs           []uuid.UUID
	PrimaryClientID     uuid.UUID
	ClientRole          string
	OpponentName        string
	OpponentRole        string
	Court               string
	Circuit             string
	CaseType            CaseType
	CriminalStageType   string
	Subject             string
	FirstSessionDate    time.Time
	OwnerID             uuid.UUID
	Status              CaseStatus
	LinkedProsecutionID *uuid.UUID
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DisplayKey returns the human-facing "number/year" key.
func (c *Case) DisplayKey() string {
	return c.CaseNo + "/" + c.Year
}

// HasClient reports whether the given client is bound to the case.
func (c *Case) HasClient(clientID uuid.UUID) bool {
	return slices.Contains(c.ClientIDs, clientID)
}

// Validate checks the case's field-level invariants, including the
// primary-client membership rule.
func (c *Case) Validate() error {
	var errs []FieldError

	if c.CaseNo == "" {
		errs = append(errs, FieldError{Field: "case_no", Message: "case number is required"})
	}
	if c.Year == "" {
		errs = append(errs, FieldError{Field: "year", Message: "year is required"})
	}
	if c.StageType == "" {
		errs = append(errs, FieldError{Field: "stage_type", Message: "stage type is required"})
	}
	if len(c.ClientIDs) == 0 {
		errs = append(errs, FieldError{Field: "client_ids", Message: "at least one client is required"})
	}
	if c.PrimaryClientID == uuid.Nil {
		errs = append(errs, FieldError{Field: "primary_client_id", Message: "primary client is required"})
	} else if len(c.ClientIDs) > 0 && !c.HasClient(c.PrimaryClientID) {
		errs = append(errs, FieldError{Field: "primary_client_id", Message: "primary client must be one of the case clients"})
	}
	if c.ClientRole == "" {
		errs = append(errs, FieldError{Field: "client_role", Message: "client role is required"})
	}
	if c.OpponentName == "" {
		errs = append(errs, FieldError{Field: "opponent_name", Message: "opponent name is required"})
	}
	if c.OpponentRole == "" {
		errs = append(errs, FieldError{Field: "opponent_role", Message: "opponent role is required"})
	}
	if c.Court == "" {
		errs = append(errs, FieldError{Field: "court", Message: "court is required"})
	}
	if c.Circuit == "" {
		errs = append(errs, FieldError{Field: "circuit", Message: "circuit is required"})
	}
	if !c.CaseType.IsValid() {
		errs = append(errs, FieldError{Field: "case_type", Message: "invalid case type"})
	}
	if c.CaseType == CaseTypeCriminal && c.CriminalStageType == "" {
		errs = append(errs, FieldError{Field: "criminal_stage_type", Message: "criminal stage is required for criminal cases"})
	}
	if c.Subject == "" {
		errs = append(errs, FieldError{Field: "subject", Message: "subject is required"})
	}
	if c.FirstSessionDate.IsZero() {
		errs = append(errs, FieldError{Field: "first_session_date", Message: "first session date is required"})
	}
	if c.OwnerID == uuid.Nil {
		errs = append(errs, FieldError{Field: "owner_id", Message: "owning lawyer is required"})
	}
	if !c.Status.IsValid() {
		errs = append(errs, FieldError{Field: "status", Message: "invalid case status"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
