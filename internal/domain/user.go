package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a firm member who can act on cases.
type User struct {
	ID           uuid.UUID
	Name         string
	Role         UserRole
	Email        string
	Phone        string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks required user fields.
func (u *User) Validate() error {
	var errs []FieldError
	if u.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if u.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if !u.Role.IsValid() {
		errs = append(errs, FieldError{Field: "role", Message: "invalid role"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
