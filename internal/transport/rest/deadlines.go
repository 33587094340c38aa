package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/deadline"
)

type deadlineService interface {
	Create(ctx context.Context, input deadline.CreateInput) (*domain.Deadline, error)
	Complete(ctx context.Context, id uuid.UUID, note string) (*domain.Deadline, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Deadline, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Deadline, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeadlineHandler serves deadline REST endpoints.
type DeadlineHandler struct {
	svc deadlineService
	log *slog.Logger
}

// NewDeadlineHandler creates a DeadlineHandler.
func NewDeadlineHandler(svc deadlineService, logger *slog.Logger) *DeadlineHandler {
	return &DeadlineHandler{svc: svc, log: logger.With("handler", "deadlines")}
}

type deadlineResponse struct {
	ID                string `json:"id"`
	CaseID            string `json:"caseId"`
	DeadlineType      string `json:"deadlineType"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	ResponsibleUserID string `json:"responsibleUserId"`
	Status            string `json:"status"`
	CompletionNote    string `json:"completionNote,omitempty"`
}

func toDeadlineResponse(d *domain.Deadline) deadlineResponse {
	return deadlineResponse{
		ID:                d.ID.String(),
		CaseID:            d.CaseID.String(),
		DeadlineType:      d.DeadlineType,
		StartDate:         d.StartDate.Format("2006-01-02"),
		EndDate:           d.EndDate.Format("2006-01-02"),
		ResponsibleUserID: d.ResponsibleUserID.String(),
		Status:            string(d.Status),
		CompletionNote:    d.CompletionNote,
	}
}

type createDeadlineRequest struct {
	CaseID            string    `json:"caseId"`
	DeadlineType      string    `json:"deadlineType"`
	StartDate         *dateOnly `json:"startDate"`
	EndDate           *dateOnly `json:"endDate"`
	ResponsibleUserID string    `json:"responsibleUserId"`
}

// Create handles POST /api/deadlines.
func (h *DeadlineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeadlineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := deadline.CreateInput{DeadlineType: req.DeadlineType}
	var parseErr error
	if input.CaseID, parseErr = parseOptionalUUID(req.CaseID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid caseId")
		return
	}
	if input.ResponsibleUserID, parseErr = parseOptionalUUID(req.ResponsibleUserID); parseErr != nil {
		writeError(w, http.StatusBadRequest, "invalid responsibleUserId")
		return
	}
	if t := optionalDate(req.StartDate); t != nil {
		input.StartDate = *t
	}
	if t := optionalDate(req.EndDate); t != nil {
		input.EndDate = *t
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeadlineResponse(created))
}

type completeDeadlineRequest struct {
	Note string `json:"note"`
}

// Complete handles PATCH /api/deadlines/{id}/complete.
func (h *DeadlineHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req completeDeadlineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.Complete(r.Context(), id, req.Note)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeadlineResponse(updated))
}

// Get handles GET /api/deadlines/{id}.
func (h *DeadlineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeadlineResponse(d))
}

// ListByCase handles GET /api/cases/{id}/deadlines.
func (h *DeadlineHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	deadlines, err := h.svc.ListByCase(r.Context(), caseID)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]deadlineResponse, 0, len(deadlines))
	for i := range deadlines {
		out = append(out, toDeadlineResponse(&deadlines[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/deadlines/{id}.
func (h *DeadlineHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
