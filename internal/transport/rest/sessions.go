package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/session"
)

type sessionService interface {
	Save(ctx context.Context, input session.SaveInput) (*session.SaveResult, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionHandler serves session REST endpoints.
type SessionHandler struct {
	svc sessionService
	log *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, log: logger.With("handler", "sessions")}
}

type sessionRequest struct {
	CaseID          string    `json:"caseId"`
	Date            dateOnly  `json:"date"`
	SessionType     string    `json:"sessionType"`
	DecisionOutcome string    `json:"decisionOutcome"`
	NextSessionDate *dateOnly `json:"nextSessionDate"`
	Close           bool      `json:"close"`
	ClosureReason   string    `json:"closureReason"`
	Notes           string    `json:"notes"`
}

func (req sessionRequest) toInput(id *uuid.UUID) (session.SaveInput, error) {
	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		return session.SaveInput{}, err
	}
	return session.SaveInput{
		ID:              id,
		CaseID:          caseID,
		Date:            req.Date.Time,
		SessionType:     req.SessionType,
		DecisionOutcome: req.DecisionOutcome,
		NextSessionDate: optionalDate(req.NextSessionDate),
		Close:           req.Close,
		ClosureReason:   domain.ClosureReason(req.ClosureReason),
		Notes:           req.Notes,
	}, nil
}

type sessionResponse struct {
	ID              string  `json:"id"`
	CaseID          string  `json:"caseId"`
	Date            string  `json:"date"`
	SessionType     string  `json:"sessionType"`
	DecisionOutcome string  `json:"decisionOutcome,omitempty"`
	NextSessionDate *string `json:"nextSessionDate,omitempty"`
	Status          string  `json:"status"`
	ClosureReason   string  `json:"closureReason,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Auto            bool    `json:"auto"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:              s.ID.String(),
		CaseID:          s.CaseID.String(),
		Date:            dateOnly{s.Date}.Format("2006-01-02"),
		SessionType:     s.SessionType,
		DecisionOutcome: s.DecisionOutcome,
		NextSessionDate: fmtDatePtr(s.NextSessionDate),
		Status:          string(s.Status),
		ClosureReason:   string(s.ClosureReason),
		Notes:           s.Notes,
		Auto:            s.Auto,
	}
}

type saveSessionResponse struct {
	Session            sessionResponse  `json:"session"`
	NextSession        *sessionResponse `json:"nextSession,omitempty"`
	GeneratedAction    *actionResponse  `json:"generatedAction,omitempty"`
	LinkedCaseAdvisory bool             `json:"linkedCaseAdvisory"`
}

func toSaveResponse(result *session.SaveResult) saveSessionResponse {
	resp := saveSessionResponse{
		Session:            toSessionResponse(result.Session),
		LinkedCaseAdvisory: result.LinkedCaseAdvisory,
	}
	if result.NextSession != nil {
		next := toSessionResponse(result.NextSession)
		resp.NextSession = &next
	}
	if result.GeneratedAction != nil {
		action := toActionResponse(result.GeneratedAction)
		resp.GeneratedAction = &action
	}
	return resp
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput(nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caseId")
		return
	}

	result, err := h.svc.Save(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaveResponse(result))
}

// Update handles PUT /api/sessions/{id}.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput(&id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caseId")
		return
	}

	result, err := h.svc.Save(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSaveResponse(result))
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// ListByCase handles GET /api/cases/{id}/sessions.
func (h *SessionHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sessions, err := h.svc.ListByCase(r.Context(), caseID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
