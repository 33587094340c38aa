package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubTask is one step inside an action's checklist. Order is positional.
type SubTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Action is a follow-up task, created manually or generated from a session
// decision. ClientID is mandatory; CaseID empty means a client-level action.
type Action struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	CaseID            *uuid.UUID
	SessionID         *uuid.UUID
	ActionType        string
	Title             string
	Priority          Priority
	ResponsibleUserID uuid.UUID
	Status            ActionStatus
	DueDate           *time.Time
	ExecutionDate     *time.Time
	ExecutionDetails  string
	SubTasks          []SubTask
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsCaseLevel reports whether the action is bound to a case (as opposed to a
// client-level action, which never blocks case closure).
func (a *Action) IsCaseLevel() bool { return a.CaseID != nil }

// CanComplete reports whether the action carries the execution proof required
// to reach the completed status.
func (a *Action) CanComplete() bool {
	return a.ExecutionDate != nil && a.ExecutionDetails != ""
}

// SensitiveActionFields is the fixed set of action fields whose change always
// requires a recorded edit reason.
var SensitiveActionFields = map[string]bool{
	"action_type":         true,
	"responsible_user_id": true,
	"client_id":           true,
	"case_id":             true,
	"execution_date":      true,
	"execution_details":   true,
}

// ActionFieldLabels maps audited action field names to human labels shown in
// the action history.
var ActionFieldLabels = map[string]string{
	"action_type":         "Action type",
	"title":               "Title",
	"due_date":            "Due date",
	"responsible_user_id": "Responsible lawyer",
	"priority":            "Priority",
	"notes":               "Notes",
	"client_id":           "Client",
	"case_id":             "Case",
	"execution_date":      "Execution date",
	"execution_details":   "Execution details",
	"status":              "Status",
}
