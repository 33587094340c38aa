package rest

import "net/http"

// Handlers groups the REST handlers mounted by NewRouter.
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Users     *UserHandler
	Clients   *ClientHandler
	Cases     *CaseHandler
	Sessions  *SessionHandler
	Actions   *ActionHandler
	Deadlines *DeadlineHandler
	Mappings  *MappingHandler
	Audit     *AuditHandler
}

// NewRouter mounts all REST routes on a ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health.Live)
	mux.HandleFunc("GET /readyz", h.Health.Ready)
	mux.HandleFunc("GET /api/health", h.Health.Health)

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	mux.HandleFunc("POST /api/users", h.Users.Create)
	mux.HandleFunc("GET /api/users", h.Users.List)
	mux.HandleFunc("GET /api/users/{id}", h.Users.Get)
	mux.HandleFunc("PUT /api/users/{id}", h.Users.Update)
	mux.HandleFunc("DELETE /api/users/{id}", h.Users.Deactivate)

	mux.HandleFunc("POST /api/clients", h.Clients.Create)
	mux.HandleFunc("GET /api/clients", h.Clients.List)
	mux.HandleFunc("GET /api/clients/{id}", h.Clients.Get)
	mux.HandleFunc("PUT /api/clients/{id}", h.Clients.Update)
	mux.HandleFunc("DELETE /api/clients/{id}", h.Clients.Delete)

	mux.HandleFunc("POST /api/cases", h.Cases.Create)
	mux.HandleFunc("GET /api/cases", h.Cases.List)
	mux.HandleFunc("GET /api/cases/{id}", h.Cases.Get)
	mux.HandleFunc("PUT /api/cases/{id}", h.Cases.Update)
	mux.HandleFunc("DELETE /api/cases/{id}", h.Cases.Delete)
	mux.HandleFunc("GET /api/cases/{id}/can-close", h.Cases.CanClose)
	mux.HandleFunc("GET /api/cases/{id}/sessions", h.Sessions.ListByCase)
	mux.HandleFunc("GET /api/cases/{id}/deadlines", h.Deadlines.ListByCase)

	mux.HandleFunc("POST /api/sessions", h.Sessions.Create)
	mux.HandleFunc("GET /api/sessions/{id}", h.Sessions.Get)
	mux.HandleFunc("PUT /api/sessions/{id}", h.Sessions.Update)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.Sessions.Delete)

	mux.HandleFunc("POST /api/actions", h.Actions.Create)
	mux.HandleFunc("GET /api/actions", h.Actions.List)
	mux.HandleFunc("GET /api/actions/{id}", h.Actions.Get)
	mux.HandleFunc("PUT /api/actions/{id}", h.Actions.FullEdit)
	mux.HandleFunc("PATCH /api/actions/{id}/progress", h.Actions.Progress)
	mux.HandleFunc("PATCH /api/actions/{id}/subtasks", h.Actions.SubTask)
	mux.HandleFunc("GET /api/actions/{id}/history", h.Actions.History)
	mux.HandleFunc("DELETE /api/actions/{id}", h.Actions.Delete)

	mux.HandleFunc("POST /api/deadlines", h.Deadlines.Create)
	mux.HandleFunc("GET /api/deadlines/{id}", h.Deadlines.Get)
	mux.HandleFunc("PATCH /api/deadlines/{id}/complete", h.Deadlines.Complete)
	mux.HandleFunc("DELETE /api/deadlines/{id}", h.Deadlines.Delete)

	mux.HandleFunc("GET /api/mappings", h.Mappings.List)
	mux.HandleFunc("POST /api/mappings", h.Mappings.Create)
	mux.HandleFunc("PUT /api/mappings/{id}", h.Mappings.Update)
	mux.HandleFunc("DELETE /api/mappings/{id}", h.Mappings.Delete)

	mux.HandleFunc("GET /api/audit/recent", h.Audit.Recent)
	mux.HandleFunc("GET /api/audit/{entityType}/{id}", h.Audit.History)

	return mux
}
