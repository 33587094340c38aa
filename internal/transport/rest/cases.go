package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/casefile"
)

type caseService interface {
	Create(ctx context.Context, input casefile.Input) (*casefile.CreateResult, error)
	Update(ctx context.Context, id uuid.UUID, input casefile.Input) (*domain.Case, error)
	CanClose(ctx context.Context, caseID uuid.UUID) (*casefile.ClosureCheck, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Case, error)
	List(ctx context.Context) ([]domain.Case, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Case, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseHandler serves case REST endpoints.
type CaseHandler struct {
	svc caseService
	log *slog.Logger
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(svc caseService, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{svc: svc, log: logger.With("handler", "cases")}
}

type caseRequest struct {
	CaseNo              string   `json:"caseNo"`
	Year                string   `json:"year"`
	StageType           string   `json:"stageType"`
	ClientIDs           []string `json:"clientIds"`
	PrimaryClientID     string   `json:"primaryClientId"`
	ClientRole          string   `json:"clientRole"`
	OpponentName        string   `json:"opponentName"`
	OpponentRole        string   `json:"opponentRole"`
	Court               string   `json:"court"`
	Circuit             string   `json:"circuit"`
	CaseType            string   `json:"caseType"`
	CriminalStageType   string   `json:"criminalStageType"`
	Subject             string   `json:"subject"`
	FirstSessionDate    dateOnly `json:"firstSessionDate"`
	OwnerID             string   `json:"ownerId"`
	Status              string   `json:"status"`
	LinkedProsecutionID *string  `json:"linkedProsecutionId"`
	Notes               string   `json:"notes"`
}

func (req caseRequest) toInput() (casefile.Input, error) {
	input := casefile.Input{
		CaseNo:            req.CaseNo,
		Year:              req.Year,
		StageType:         req.StageType,
		ClientRole:        req.ClientRole,
		OpponentName:      req.OpponentName,
		OpponentRole:      req.OpponentRole,
		Court:             req.Court,
		Circuit:           req.Circuit,
		CaseType:          domain.CaseType(req.CaseType),
		CriminalStageType: req.CriminalStageType,
		Subject:           req.Subject,
		FirstSessionDate:  req.FirstSessionDate.Time,
		Status:            domain.CaseStatus(req.Status),
		Notes:             req.Notes,
	}
	for _, raw := range req.ClientIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return casefile.Input{}, err
		}
		input.ClientIDs = append(input.ClientIDs, id)
	}
	if req.PrimaryClientID != "" {
		id, err := uuid.Parse(req.PrimaryClientID)
		if err != nil {
			return casefile.Input{}, err
		}
		input.PrimaryClientID = id
	}
	if req.OwnerID != "" {
		id, err := uuid.Parse(req.OwnerID)
		if err != nil {
			return casefile.Input{}, err
		}
		input.OwnerID = id
	}
	if req.LinkedProsecutionID != nil && *req.LinkedProsecutionID != "" {
		id, err := uuid.Parse(*req.LinkedProsecutionID)
		if err != nil {
			return casefile.Input{}, err
		}
		input.LinkedProsecutionID = &id
	}
	return input, nil
}

type caseResponse struct {
	ID                  string   `json:"id"`
	CaseNo              string   `json:"caseNo"`
	Year                string   `json:"year"`
	DisplayKey          string   `json:"displayKey"`
	StageType           string   `json:"stageType"`
	ClientIDs           []string `json:"clientIds"`
	PrimaryClientID     string   `json:"primaryClientId"`
	ClientRole          string   `json:"clientRole"`
	OpponentName        string   `json:"opponentName"`
	OpponentRole        string   `json:"opponentRole"`
	Court               string   `json:"court"`
	Circuit             string   `json:"circuit"`
	CaseType            string   `json:"caseType"`
	CriminalStageType   string   `json:"criminalStageType,omitempty"`
	Subject             string   `json:"subject"`
	FirstSessionDate    dateOnly `json:"firstSessionDate"`
	OwnerID             string   `json:"ownerId"`
	Status              string   `json:"status"`
	LinkedProsecutionID *string  `json:"linkedProsecutionId,omitempty"`
	Notes               string   `json:"notes,omitempty"`
}

func toCaseResponse(c *domain.Case) caseResponse {
	resp := caseResponse{
		ID:                c.ID.String(),
		CaseNo:            c.CaseNo,
		Year:              c.Year,
		DisplayKey:        c.DisplayKey(),
		StageType:         c.StageType,
		ClientIDs:         make([]string, 0, len(c.ClientIDs)),
		PrimaryClientID:   c.PrimaryClientID.String(),
		ClientRole:        c.ClientRole,
		OpponentName:      c.OpponentName,
		OpponentRole:      c.OpponentRole,
		Court:             c.Court,
		Circuit:           c.Circuit,
		CaseType:          string(c.CaseType),
		CriminalStageType: c.CriminalStageType,
		Subject:           c.Subject,
		FirstSessionDate:  dateOnly{c.FirstSessionDate},
		OwnerID:           c.OwnerID.String(),
		Status:            string(c.Status),
		Notes:             c.Notes,
	}
	for _, id := range c.ClientIDs {
		resp.ClientIDs = append(resp.ClientIDs, id.String())
	}
	if c.LinkedProsecutionID != nil {
		s := c.LinkedProsecutionID.String()
		resp.LinkedProsecutionID = &s
	}
	return resp
}

type createCaseResponse struct {
	Case         caseResponse    `json:"case"`
	FirstSession sessionResponse `json:"firstSession"`
}

// Create handles POST /api/cases.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid UUID in request")
		return
	}

	result, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCaseResponse{
		Case:         toCaseResponse(result.Case),
		FirstSession: toSessionResponse(result.FirstSession),
	})
}

// Update handles PUT /api/cases/{id}.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req caseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid UUID in request")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(updated))
}

type canCloseResponse struct {
	OK              bool     `json:"ok"`
	BlockingReasons []string `json:"blockingReasons"`
}

// CanClose handles GET /api/cases/{id}/can-close.
func (h *CaseHandler) CanClose(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	check, err := h.svc.CanClose(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, canCloseResponse{
		OK:              check.OK,
		BlockingReasons: check.BlockingReasons,
	})
}

// Get handles GET /api/cases/{id}.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// List handles GET /api/cases, optionally filtered by ?clientId=.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		cases []domain.Case
		err   error
	)
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		clientID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid clientId")
			return
		}
		cases, err = h.svc.ListByClient(r.Context(), clientID)
	} else {
		cases, err = h.svc.List(r.Context())
	}
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]caseResponse, 0, len(cases))
	for i := range cases {
		out = append(out, toCaseResponse(&cases[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/cases/{id}.
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
