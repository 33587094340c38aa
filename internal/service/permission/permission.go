// Package permission implements role-based access control for firm members.
//
// Each role maps capabilities to a grant. A grant is either a plain yes/no
// or a scope that is checked against the ownership facts of the record being
// touched.
package permission

import (
	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// Capability names an operation gated by role.
type Capability string

const (
	CreateCase     Capability = "create_case"
	EditCase       Capability = "edit_case"
	CreateSession  Capability = "create_session"
	EditSession    Capability = "edit_session"
	CompleteAction Capability = "complete_action"
	CreateDeadline Capability = "create_deadline"
	CloseCase      Capability = "close_case"
	DeleteRecords  Capability = "delete_records"
	AdminConfig    Capability = "admin_config"
	ViewAll        Capability = "view_all"
)

// grant is the per-capability entry in the role table.
type grant int

const (
	denied grant = iota
	allowed
	// all: allowed on any record regardless of ownership.
	all
	// own: allowed only when the actor owns the case.
	own
	// assigned: allowed when the actor owns the case or is the responsible
	// user on the record.
	assigned
	// addDetails: allowed only for the responsible user, and callers treat
	// it as execution-details-only access.
	addDetails
	// soft: deletions are allowed but must be soft deletes.
	soft
)

var roleGrants = map[domain.UserRole]map[Capability]grant{
	domain.UserRolePartner: {
		CreateCase:     allowed,
		EditCase:       all,
		CreateSession:  allowed,
		EditSession:    all,
		CompleteAction: allowed,
		CreateDeadline: allowed,
		CloseCase:      allowed,
		DeleteRecords:  soft,
		AdminConfig:    allowed,
		ViewAll:        allowed,
	},
	domain.UserRoleCaseOwner: {
		CreateCase:     allowed,
		EditCase:       own,
		CreateSession:  allowed,
		EditSession:    own,
		CompleteAction: allowed,
		CreateDeadline: allowed,
	},
	domain.UserRoleLawyer: {
		EditCase:       assigned,
		CreateSession:  assigned,
		EditSession:    assigned,
		CompleteAction: assigned,
	},
	domain.UserRoleTrainee: {
		CompleteAction: addDetails,
	},
}

// Record carries the ownership facts of the record a scoped grant is checked
// against. Zero IDs mean "no such party".
type Record struct {
	OwnerID           uuid.UUID
	ResponsibleUserID uuid.UUID
}

// Can reports whether an actor with the given role may exercise cap on rec.
func Can(role domain.UserRole, actorID uuid.UUID, cap Capability, rec Record) bool {
	grants, ok := roleGrants[role]
	if !ok {
		return false
	}
	switch grants[cap] {
	case allowed, all, soft:
		return true
	case own:
		return rec.OwnerID != uuid.Nil && rec.OwnerID == actorID
	case assigned:
		return (rec.OwnerID != uuid.Nil && rec.OwnerID == actorID) ||
			(rec.ResponsibleUserID != uuid.Nil && rec.ResponsibleUserID == actorID)
	case addDetails:
		return rec.ResponsibleUserID != uuid.Nil && rec.ResponsibleUserID == actorID
	default:
		return false
	}
}

// DetailsOnly reports whether the actor's access to cap is limited to adding
// execution details, as with trainees completing actions.
func DetailsOnly(role domain.UserRole, cap Capability) bool {
	grants, ok := roleGrants[role]
	if !ok {
		return false
	}
	return grants[cap] == addDetails
}

// IsPartner reports whether the role is the partner role.
func IsPartner(role domain.UserRole) bool {
	return role == domain.UserRolePartner
}

// IsOwnerOrPartner reports whether the actor is a partner or owns the case.
func IsOwnerOrPartner(role domain.UserRole, actorID, caseOwnerID uuid.UUID) bool {
	return IsPartner(role) || (caseOwnerID != uuid.Nil && caseOwnerID == actorID)
}

// CanEditActions reports whether the role may edit action definitions. Only
// partners may; other roles can only view actions or record progress.
func CanEditActions(role domain.UserRole) bool {
	return IsPartner(role)
}
