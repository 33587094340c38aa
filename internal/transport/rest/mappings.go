package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/decisionmap"
)

type mappingService interface {
	List(ctx context.Context) ([]domain.DecisionActionMapping, error)
	Create(ctx context.Context, input decisionmap.CreateInput) (*domain.DecisionActionMapping, error)
	Update(ctx context.Context, id uuid.UUID, input decisionmap.UpdateInput) (*domain.DecisionActionMapping, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MappingHandler serves decision-to-action mapping endpoints.
type MappingHandler struct {
	svc mappingService
	log *slog.Logger
}

// NewMappingHandler creates a MappingHandler.
func NewMappingHandler(svc mappingService, logger *slog.Logger) *MappingHandler {
	return &MappingHandler{svc: svc, log: logger.With("handler", "mappings")}
}

type mappingResponse struct {
	ID                string           `json:"id"`
	DecisionType      string           `json:"decisionType"`
	ActionType        string           `json:"actionType"`
	ExecutionProof    string           `json:"executionProof,omitempty"`
	SubTasks          []domain.SubTask `json:"subTasks"`
	RequiresNextDate  bool             `json:"requiresNextDate"`
	Urgent            bool             `json:"urgent"`
	CreatesLinkedCase bool             `json:"createsLinkedCase"`
}

func toMappingResponse(m *domain.DecisionActionMapping) mappingResponse {
	resp := mappingResponse{
		ID:                m.ID.String(),
		DecisionType:      m.DecisionType,
		ActionType:        m.ActionType,
		ExecutionProof:    m.ExecutionProof,
		SubTasks:          m.SubTasks,
		RequiresNextDate:  m.RequiresNextDate,
		Urgent:            m.Urgent,
		CreatesLinkedCase: m.CreatesLinkedCase,
	}
	if resp.SubTasks == nil {
		resp.SubTasks = []domain.SubTask{}
	}
	return resp
}

type mappingRequest struct {
	DecisionType      string           `json:"decisionType"`
	ActionType        string           `json:"actionType"`
	ExecutionProof    string           `json:"executionProof"`
	SubTasks          []domain.SubTask `json:"subTasks"`
	RequiresNextDate  bool             `json:"requiresNextDate"`
	Urgent            bool             `json:"urgent"`
	CreatesLinkedCase bool             `json:"createsLinkedCase"`
}

// List handles GET /api/mappings.
func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.List(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]mappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, toMappingResponse(&mappings[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/mappings.
func (h *MappingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), decisionmap.CreateInput{
		DecisionType:      req.DecisionType,
		ActionType:        req.ActionType,
		ExecutionProof:    req.ExecutionProof,
		SubTasks:          req.SubTasks,
		RequiresNextDate:  req.RequiresNextDate,
		Urgent:            req.Urgent,
		CreatesLinkedCase: req.CreatesLinkedCase,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMappingResponse(created))
}

// Update handles PUT /api/mappings/{id}.
func (h *MappingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req mappingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, decisionmap.UpdateInput{
		DecisionType:      req.DecisionType,
		ActionType:        req.ActionType,
		ExecutionProof:    req.ExecutionProof,
		SubTasks:          req.SubTasks,
		RequiresNextDate:  req.RequiresNextDate,
		Urgent:            req.Urgent,
		CreatesLinkedCase: req.CreatesLinkedCase,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMappingResponse(updated))
}

// Delete handles DELETE /api/mappings/{id}.
func (h *MappingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
