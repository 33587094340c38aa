package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a person or company the firm represents.
type Client struct {
	ID           uuid.UUID
	Name         string
	NationalID   string
	Phone        string
	Address      string
	POANumber    string
	NotaryOffice string
	POADate      *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks required client fields.
func (c *Client) Validate() error {
	var errs []FieldError
	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "client name is required"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
