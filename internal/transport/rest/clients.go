package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/client"
)

type clientService interface {
	Create(ctx context.Context, input client.Input) (*domain.Client, error)
	Update(ctx context.Context, id uuid.UUID, input client.Input) (*domain.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientHandler serves client REST endpoints.
type ClientHandler struct {
	svc clientService
	log *slog.Logger
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(svc clientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, log: logger.With("handler", "clients")}
}

type clientRequest struct {
	Name         string    `json:"name"`
	NationalID   string    `json:"nationalId"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	POANumber    string    `json:"poaNumber"`
	NotaryOffice string    `json:"notaryOffice"`
	POADate      *dateOnly `json:"poaDate"`
	Notes        string    `json:"notes"`
}

func (req clientRequest) toInput() client.Input {
	return client.Input{
		Name:         req.Name,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Address:      req.Address,
		POANumber:    req.POANumber,
		NotaryOffice: req.NotaryOffice,
		POADate:      optionalDate(req.POADate),
		Notes:        req.Notes,
	}
}

type clientResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	NationalID   string  `json:"nationalId,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Address      string  `json:"address,omitempty"`
	POANumber    string  `json:"poaNumber,omitempty"`
	NotaryOffice string  `json:"notaryOffice,omitempty"`
	POADate      *string `json:"poaDate,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		NationalID:   c.NationalID,
		Phone:        c.Phone,
		Address:      c.Address,
		POANumber:    c.POANumber,
		NotaryOffice: c.NotaryOffice,
		POADate:      fmtDatePtr(c.POADate),
		Notes:        c.Notes,
	}
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.svc.Create(r.Context(), req.toInput())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(created))
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req clientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	updated, err := h.svc.Update(r.Context(), id, req.toInput())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(updated))
}

// Get handles GET /api/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(c))
}

// List handles GET /api/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.List(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
