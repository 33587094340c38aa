package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaheenlf/slf-backend/internal/adapter/postgres"
	actionrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/action"
	auditrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/audit"
	caserepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/casefile"
	clientrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/client"
	deadlinerepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/deadline"
	mappingrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/mapping"
	sessionrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/session"
	settingrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/setting"
	userrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/user"
	"github.com/shaheenlf/slf-backend/internal/auth"
	"github.com/shaheenlf/slf-backend/internal/config"
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

const (
	requestsPerMinute      = 120 // per client IP
	deadlineSweepInterval  = time.Hour
	rateLimiterCleanupTick = 5 * time.Minute
)

// Run is the application entry point. It loads configuration, connects to
// the database, applies migrations, wires services to HTTP handlers, and
// serves until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

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

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	authService := authsvc.NewService(logger, users, jwtManager)
	userService := usersvc.NewService(logger, users, auditRecords, txManager)
	clientService := clientsvc.NewService(logger, clients, auditRecords, txManager)
	mappingService := decisionmap.NewService(logger, mappings, settings, auditRecords, txManager)
	caseService := casesvc.NewService(logger, cases, sessions, actions, deadlines, auditRecords, txManager)
	sessionService := sessionsvc.NewService(logger, sessions, cases, actions, auditRecords, mappingService, txManager)
	actionService := actionsvc.NewService(logger, actions, cases, auditRecords, txManager)
	deadlineService := deadlinesvc.NewService(logger, deadlines, auditRecords, txManager)
	auditService := auditsvc.NewService(logger, auditRecords, cfg.Audit)

	router := rest.NewRouter(rest.Handlers{
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
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

	limiter := middleware.NewRateLimiter(rateLimiterCleanupTick)
	defer limiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(authService),
		limiter.Limit(requestsPerMinute),
	)(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go sweepExpiredDeadlines(ctx, logger, deadlineService)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// sweepExpiredDeadlines periodically marks open deadlines whose end date has
// passed as expired. Runs until ctx is cancelled.
func sweepExpiredDeadlines(ctx context.Context, logger *slog.Logger, svc *deadlinesvc.Service) {
	ticker := time.NewTicker(deadlineSweepInterval)
	defer ticker.Stop()

	for {
		if _, err := svc.MarkExpired(ctx); err != nil && ctx.Err() == nil {
			logger.Error("deadline sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
