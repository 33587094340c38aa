package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/action"
)

type actionService interface {
	Create(ctx context.Context, input action.CreateInput) (*domain.Action, error)
	FullEdit(ctx context.Context, id uuid.UUID, input action.FullEditInput) (*domain.Action, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, input action.ProgressInput) (*domain.Action, error)
	SetSubTask(ctx context.Context, id uuid.UUID, index int, completed bool) (*domain.Action, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Action, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Action, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error)
	ListMine(ctx context.Context) ([]domain.Action, error)
	History(ctx context.Context, id uuid.UUID) ([]domain.AuditRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActionHandler serves action REST endpoints.
type ActionHandler struct {
	svc actionService
	log *slog.Logger
}

// NewActionHandler creates an ActionHandler.
func NewActionHandler(svc actionService, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{svc: svc, log: logger.With("handler", "actions")}
}

type actionResponse struct {
	ID                string           `json:"id"`
	ClientID          string           `json:"clientId"`
	CaseID            *string          `json:"caseId,omitempty"`
	SessionID         *string          `json:"sessionId,omitempty"`
	ActionType        string           `json:"actionType"`
	Title             string           `json:"title,omitempty"`
	Priority          string           `json:"priority"`
	ResponsibleUserID string           `json:"responsibleUserId"`
	Status            string           `json:"status"`
	DueDate           *string          `json:"dueDate,omitempty"`
	ExecutionDate     *string          `json:"executionDate,omitempty"`
	ExecutionDetails  string           `json:"executionDetails,omitempty"`
	SubTasks          []domain.SubTask `json:"subTasks"`
	Notes             string           `json:"notes,omitempty"`
}

func toActionResponse(a *domain.Action) actionResponse {
	resp := actionResponse{
		ID:                a.ID.String(),
		ClientID:          a.ClientID.String(),
		ActionType:        a.ActionType,
		Title:             a.Title,
		Priority:          string(a.Priority),
		ResponsibleUserID: a.ResponsibleUserID.String(),
		Status:            string(a.Status),
		DueDate:           fmtDatePtr(a.DueDate),
		ExecutionDate:     fmtDatePtr(a.ExecutionDate),
		ExecutionDetails:  a.ExecutionDetails,
		SubTasks:          a.SubTasks,
		Notes:             a.Notes,
	}
	if resp.SubTasks == nil {
		resp.SubTasks = []domain.SubTask{}
	}
	if a.CaseID != nil {
		s := a.CaseID.String()
		resp.CaseID = &s
	}
	if a.SessionID != nil {
		s := a.SessionID.String()
		resp.SessionID = &s
	}
	return resp
}

type createActionRequest struct {
	ClientID          string           `json:"clientId"`
	CaseID            *string          `json:"caseId"`
	ActionType        string           `json:"actionType"`
	Title             string           `json:"title"`
	Priority          string           `json:"priority"`
	ResponsibleUserID string           `json:"responsibleUserId"`
	DueDate           *dateOnly        `json:"dueDate"`
	SubTasks          []domain.SubTask `json:"subTasks"`
	Notes             string           `json:"notes"`
}

// Create handles POST /api/actions.
func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := action.CreateInput{
		ActionType: req.ActionType,
		Title:      req.Title,
		Priority:   domain.Priority(req.Priority),
		DueDate:    optionalDate(req.DueDate),
		SubTasks:   req.SubTasks,
		Notes:      req.Notes,
	}
	var parseErr error
	if input.ClientID, parseErr = parseOptionalUUID(req.ClientID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid clientId")
		return
	}
	if input.ResponsibleUserID, parseErr = parseOptionalUUID(req.ResponsibleUserID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid responsibleUserId")
		return
	}
	if req.CaseID != nil && *req.CaseID != "" {
		caseID, err := uuid.Parse(*req.CaseID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid caseId")
			return
		}
		input.CaseID = &caseID
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActionResponse(created))
}

type fullEditRequest struct {
	ActionType        string    `json:"actionType"`
	Title             string    `json:"title"`
	Priority          string    `json:"priority"`
	ClientID          string    `json:"clientId"`
	CaseID            *string   `json:"caseId"`
	ResponsibleUserID string    `json:"responsibleUserId"`
	DueDate           *dateOnly `json:"dueDate"`
	Notes             string    `json:"notes"`
	ExecutionDate     *dateOnly `json:"executionDate"`
	ExecutionDetails  string    `json:"executionDetails"`
	EditReason        string    `json:"editReason"`
}

// FullEdit handles PUT /api/actions/{id}.
func (h *ActionHandler) FullEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req fullEditRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := action.FullEditInput{
		ActionType:       req.ActionType,
		Title:            req.Title,
		Priority:         domain.Priority(req.Priority),
		DueDate:          optionalDate(req.DueDate),
		Notes:            req.Notes,
		ExecutionDate:    optionalDate(req.ExecutionDate),
		ExecutionDetails: req.ExecutionDetails,
		EditReason:       req.EditReason,
	}
	var parseErr error
	if input.ClientID, parseErr = parseOptionalUUID(req.ClientID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid clientId")
		return
	}
	if input.ResponsibleUserID, parseErr = parseOptionalUUID(req.ResponsibleUserID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid responsibleUserId")
		return
	}
	if req.CaseID != nil && *req.CaseID != "" {
		caseID, err := uuid.Parse(*req.CaseID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid caseId")
			return
		}
		input.CaseID = &caseID
	}

	updated, err := h.svc.FullEdit(r.Context(), id, input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(updated))
}

type progressRequest struct {
	Status           string    `json:"status"`
	Notes            string    `json:"notes"`
	ExecutionDate    *dateOnly `json:"executionDate"`
	ExecutionDetails string    `json:"executionDetails"`
}

// Progress handles PATCH /api/actions/{id}/progress.
func (h *ActionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateProgress(r.Context(), id, action.ProgressInput{
		Status:           domain.ActionStatus(req.Status),
		Notes:            req.Notes,
		ExecutionDate:    optionalDate(req.ExecutionDate),
		ExecutionDetails: req.ExecutionDetails,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(updated))
}

type subTaskRequest struct {
	Index     int  `json:"index"`
	Completed bool `json:"completed"`
}

// SubTask handles PATCH /api/actions/{id}/subtasks.
func (h *ActionHandler) SubTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req subTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.SetSubTask(r.Context(), id, req.Index, req.Completed)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(updated))
}

// Get handles GET /api/actions/{id}.
func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(a))
}

// List handles GET /api/actions filtered by ?clientId= / ?caseId= /
// ?mine=true.
func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		actions []domain.Action
		err     error
	)
	switch {
	case r.URL.Query().Get("mine") == "true":
		actions, err = h.svc.ListMine(r.Context())
	case r.URL.Query().Get("clientId") != "":
		clientID, parseErr := uuid.Parse(r.URL.Query().Get("clientId"))
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid clientId")
			return
		}
		actions, err = h.svc.ListByClient(r.Context(), clientID)
	case r.URL.Query().Get("caseId") != "":
		caseID, parseErr := uuid.Parse(r.URL.Query().Get("caseId"))
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid caseId")
			return
		}
		actions, err = h.svc.ListByCase(r.Context(), caseID)
	default:
		writeError(w, http.StatusBadRequest, "one of clientId, caseId or mine=true is required")
		return
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]actionResponse, 0, len(actions))
	for i := range actions {
		out = append(out, toActionResponse(&actions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type auditEntryResponse struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	EntityType string         `json:"entityType"`
	EntityID   *string        `json:"entityId,omitempty"`
	Action     string         `json:"action"`
	Changes    map[string]any `json:"changes,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toAuditEntryResponse(rec *domain.AuditRecord) auditEntryResponse {
	resp := auditEntryResponse{
		ID:         rec.ID.String(),
		ActorID:    rec.ActorID.String(),
		EntityType: string(rec.EntityType),
		Action:     string(rec.Action),
		Changes:    rec.Changes,
		CreatedAt:  rec.CreatedAt,
	}
	if rec.EntityID != nil {
		s := rec.EntityID.String()
		resp.EntityID = &s
	}
	return resp
}

// History handles GET /api/actions/{id}/history.
func (h *ActionHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.svc.History(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]auditEntryResponse, 0, len(records))
	for i := range records {
		out = append(out, toAuditEntryResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/actions/{id}.
func (h *ActionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseOptionalUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}
