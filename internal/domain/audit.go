package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is one immutable entry in the firm's audit trail. Records are
// appended, never updated or deleted.
type AuditRecord struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	EntityType EntityType
	EntityID   *uuid.UUID
	Action     AuditAction
	Changes    map[string]any
	CreatedAt  time.Time
}

// FieldChange is the structured payload of a FIELD_CHANGE audit record: one
// record per individually changed field.
type FieldChange struct {
	Field      string `json:"field"`
	FieldLabel string `json:"field_label"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	Sensitive  bool   `json:"sensitive"`
	EditReason string `json:"edit_reason"`
}

// ToChanges converts the field change into an audit changes payload.
func (fc FieldChange) ToChanges() map[string]any {
	return map[string]any{
		"field":       fc.Field,
		"field_label": fc.FieldLabel,
		"old_value":   fc.OldValue,
		"new_value":   fc.NewValue,
		"sensitive":   fc.Sensitive,
		"edit_reason": fc.EditReason,
	}
}
