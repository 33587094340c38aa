package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a single court/tribunal/investigation appearance tied to a case.
type Session struct {
	ID              uuid.UUID
	CaseID          uuid.UUID
	Date            time.Time
	SessionType     string
	DecisionOutcome string
	NextSessionDate *time.Time
	Status          SessionStatus
	ClosureReason   ClosureReason
	Notes           string
	Auto            bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool { return s.Status == SessionStatusClosed }
