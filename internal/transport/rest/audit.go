package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

type auditService interface {
	History(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

// AuditHandler serves read-only audit trail endpoints.
type AuditHandler struct {
	svc auditService
	log *slog.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc auditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: logger.With("handler", "audit")}
}

// History handles GET /api/audit/{entityType}/{id}.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	entityID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.svc.History(r.Context(), domain.EntityType(r.PathValue("entityType")), entityID)
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

// Recent handles GET /api/audit/recent?limit=N.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := h.svc.Recent(r.Context(), limit)
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
