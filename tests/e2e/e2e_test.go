//go:build e2e

// Package e2e_test exercises the full REST stack against a real PostgreSQL
// instance: router, middleware, services, and repositories wired exactly as
// in production, with only the listener replaced by httptest.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaheenlf/slf-backend/internal/adapter/postgres"
	actionrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/action"
	auditrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/audit"
	caserepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/casefile"
	clientrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/client"
	deadlinerepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/deadline"
	mappingrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/mapping"
	sessionrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/session"
	settingrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/setting"
	"github.com/shaheenlf/slf-backend/internal/adapter/postgres/testhelper"
	userrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/user"
	authpkg "github.com/shaheenlf/slf-backend/internal/auth"
	"github.com/shaheenlf/slf-backend/internal/config"
	"github.com/shaheenlf/slf-backend/internal/domain"
	actionsvc "github.com/shaheenlf/slf-backend/internal/service/action"
	auditsvc "github.com/shaheenlf/slf-backend/internal/service/audit"
	authsvc "github.com/shaheenlf/slf-backend/internal/service/auth"
	casesvc "github.com/shaheenlf/slf-backend/internal/service/casefile"
	clientsvc "github.com/shaheenlf/slf-backend/internal/service/client"
	deadlinesvc "github.com/shaheenlf/slf-backend/internal/service/deadline"
	"github.com/shaheenlf/slf-backend/internal/service/decisionmap"
	sessionsvc "github.com/shaheenlf/slf-backend/internal/service/session"
	usersvc "github.com/shaheenlf/slf-backend/internal/service/user"
	"github.com/shaheenlf/slf-backend/internal/transport/middleware"
	"github.com/shaheenlf/slf-backend/internal/transport/rest"
)

type env struct {
	server *httptest.Server
	users  *userrepo.Repo

	partnerID    uuid.UUID
	partnerToken string
}

// setupEnv boots the whole application against a fresh test database and
// seeds one partner account.
func setupEnv(t *testing.T) *env {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	// The container is shared across the test run; start each test from a
	// clean slate.
	_, err := pool.Exec(t.Context(),
		`TRUNCATE users, clients, cases, sessions, actions, deadlines,
		 decision_mappings, settings, audit_log CASCADE`)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	txManager := postgres.NewTxManager(pool)

	users := userrepo.New(pool)
	clients := clientrepo.New(pool)
	cases := caserepo.New(pool)
	sessions := sessionrepo.New(pool)
	actions := actionrepo.New(pool)
	deadlines := deadlinerepo.New(pool)
	mappings := mappingrepo.New(pool)
	settings := settingrepo.New(pool)
	auditRecords := auditrepo.New(pool)

	jwtManager := authpkg.NewJWTManager("e2e-secret-at-least-32-characters!!", "slf-backend-e2e", time.Hour)

	authService := authsvc.NewService(logger, users, jwtManager)
	userService := usersvc.NewService(logger, users, auditRecords, txManager)
	clientService := clientsvc.NewService(logger, clients, auditRecords, txManager)
	mappingService := decisionmap.NewService(logger, mappings, settings, auditRecords, txManager)
	caseService := casesvc.NewService(logger, cases, sessions, actions, deadlines, auditRecords, txManager)
	sessionService := sessionsvc.NewService(logger, sessions, cases, actions, auditRecords, mappingService, txManager)
	actionService := actionsvc.NewService(logger, actions, cases, auditRecords, txManager)
	deadlineService := deadlinesvc.NewService(logger, deadlines, auditRecords, txManager)
	auditService := auditsvc.NewService(logger, auditRecords, config.AuditConfig{RecentLimit: 50, MaxLimit: 500})

	router := rest.NewRouter(rest.Handlers{
		Health:    rest.NewHealthHandler(pool, "e2e"),
		Auth:      rest.NewAuthHandler(authService, logger),
		Users:     rest.NewUserHandler(userService, logger),
		Clients:   rest.NewClientHandler(clientService, logger),
		Cases:     rest.NewCaseHandler(caseService, logger),
		Sessions:  rest.NewSessionHandler(sessionService, logger),
		Actions:   rest.NewActionHandler(actionService, logger),
		Deadlines: rest.NewDeadlineHandler(deadlineService, logger),
		Mappings:  rest.NewMappingHandler(mappingService, logger),
		Audit:     rest.NewAuditHandler(auditService, logger),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Auth(authService),
	)(router)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	e := &env{server: server, users: users}
	e.partnerID = e.seedUser(t, "شاهين العبدالله", domain.UserRolePartner, "partner@firm.example", "partner-pass-1")
	e.partnerToken = e.login(t, "partner@firm.example", "partner-pass-1")
	return e
}

func (e *env) seedUser(t *testing.T, name string, role domain.UserRole, email, password string) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := e.users.Create(t.Context(), &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Role:         role,
		Email:        email,
		Active:       true,
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	return u.ID
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	status := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, &out)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

// do performs a JSON request and decodes the response body into out when it
// is non-nil. Returns the HTTP status code.
func (e *env) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp.StatusCode
}

func (e *env) createClient(t *testing.T, token, name string) string {
	t.Helper()

	var out struct {
		ID string `json:"id"`
	}
	status := e.do(t, http.MethodPost, "/api/clients", token, map[string]any{
		"name":         name,
		"phone":        "0551234567",
		"poaNumber":    "1234/أ",
		"notaryOffice": "مكتب التوثيق الأول",
		"poaDate":      "2026-01-15",
	}, &out)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, out.ID)
	return out.ID
}

func dateStr(daysFromNow int) string {
	return time.Now().AddDate(0, 0, daysFromNow).Format("2006-01-02")
}

func caseBody(clientID, ownerID string, overrides map[string]any) map[string]any {
	body := map[string]any{
		"caseNo":           fmt.Sprintf("%d", time.Now().UnixNano()%100000),
		"year":             "2026",
		"stageType":        "ابتدائي",
		"clientIds":        []string{clientID},
		"primaryClientId":  clientID,
		"clientRole":       "مدعي",
		"opponentName":     "شركة الاختبار",
		"opponentRole":     "مدعى عليه",
		"court":            "محكمة الرياض",
		"circuit":          "الدائرة الثالثة",
		"caseType":         string(domain.CaseTypeCivil),
		"subject":          "مطالبة مالية",
		"firstSessionDate": dateStr(7),
		"ownerId":          ownerID,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}
