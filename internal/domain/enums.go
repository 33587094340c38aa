package domain

// CaseStatus represents the lifecycle state of a legal case.
type CaseStatus string

const (
	CaseStatusActive   CaseStatus = "ACTIVE"
	CaseStatusJudgment CaseStatus = "JUDGMENT"
	CaseStatusClosed   CaseStatus = "CLOSED"
)

func (s CaseStatus) String() string { return string(s) }

func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusActive, CaseStatusJudgment, CaseStatusClosed:
		return true
	}
	return false
}

// CaseType represents the branch of law a case belongs to.
type CaseType string

const (
	CaseTypeCivil      CaseType = "CIVIL"
	CaseTypeCriminal   CaseType = "CRIMINAL"
	CaseTypeAdmin      CaseType = "ADMIN"
	CaseTypeFamily     CaseType = "FAMILY"
	CaseTypeLabor      CaseType = "LABOR"
	CaseTypeCommercial CaseType = "COMMERCIAL"
)

func (t CaseType) String() string { return string(t) }

func (t CaseType) IsValid() bool {
	switch t {
	case CaseTypeCivil, CaseTypeCriminal, CaseTypeAdmin,
		CaseTypeFamily, CaseTypeLabor, CaseTypeCommercial:
		return true
	}
	return false
}

// SessionStatus represents the state of a court session record.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusOpen, SessionStatusClosed:
		return true
	}
	return false
}

// ActionStatus represents the progress state of a follow-up action.
// Completed is terminal: no transitions lead out of it.
type ActionStatus string

const (
	ActionStatusOpen       ActionStatus = "OPEN"
	ActionStatusInProgress ActionStatus = "IN_PROGRESS"
	ActionStatusCompleted  ActionStatus = "COMPLETED"
	ActionStatusBlocked    ActionStatus = "BLOCKED"
)

func (s ActionStatus) String() string { return string(s) }

func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusOpen, ActionStatusInProgress, ActionStatusCompleted, ActionStatusBlocked:
		return true
	}
	return false
}

// IsTerminal reports whether no further progress updates are allowed.
func (s ActionStatus) IsTerminal() bool { return s == ActionStatusCompleted }

// DeadlineStatus represents the state of a statutory deadline.
type DeadlineStatus string

const (
	DeadlineStatusOpen      DeadlineStatus = "OPEN"
	DeadlineStatusCompleted DeadlineStatus = "COMPLETED"
	DeadlineStatusExpired   DeadlineStatus = "EXPIRED"
)

func (s DeadlineStatus) String() string { return string(s) }

func (s DeadlineStatus) IsValid() bool {
	switch s {
	case DeadlineStatusOpen, DeadlineStatusCompleted, DeadlineStatusExpired:
		return true
	}
	return false
}

// Priority represents the urgency of an action.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// UserRole represents the authority level of a firm member.
type UserRole string

const (
	UserRolePartner   UserRole = "partner"
	UserRoleCaseOwner UserRole = "case_owner"
	UserRoleLawyer    UserRole = "lawyer"
	UserRoleTrainee   UserRole = "trainee"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRolePartner, UserRoleCaseOwner, UserRoleLawyer, UserRoleTrainee:
		return true
	}
	return false
}

// EntityType identifies the kind of domain entity (used in audit logs).
type EntityType string

const (
	EntityTypeClient   EntityType = "CLIENT"
	EntityTypeCase     EntityType = "CASE"
	EntityTypeSession  EntityType = "SESSION"
	EntityTypeAction   EntityType = "ACTION"
	EntityTypeDeadline EntityType = "DEADLINE"
	EntityTypeUser     EntityType = "USER"
	EntityTypeMapping  EntityType = "DECISION_MAPPING"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeClient, EntityTypeCase, EntityTypeSession, EntityTypeAction,
		EntityTypeDeadline, EntityTypeUser, EntityTypeMapping:
		return true
	}
	return false
}

// AuditAction represents the kind of mutation recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionComplete     AuditAction = "COMPLETE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
	AuditActionFieldChange  AuditAction = "FIELD_CHANGE"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionComplete,
		AuditActionDelete, AuditActionStatusChange, AuditActionFieldChange:
		return true
	}
	return false
}

// ClosureReason is the enumerated reason a session may be closed without a
// next-session date.
type ClosureReason string

const (
	ClosureReservedForJudgment ClosureReason = "RESERVED_FOR_JUDGMENT"
	ClosureFinalJudgment       ClosureReason = "FINAL_JUDGMENT"
	ClosureStruckOff           ClosureReason = "STRUCK_OFF"
	ClosureArchived            ClosureReason = "ARCHIVED"
	ClosureOther               ClosureReason = "OTHER"
)

func (r ClosureReason) String() string { return string(r) }

func (r ClosureReason) IsValid() bool {
	switch r {
	case ClosureReservedForJudgment, ClosureFinalJudgment, ClosureStruckOff,
		ClosureArchived, ClosureOther:
		return true
	}
	return false
}
