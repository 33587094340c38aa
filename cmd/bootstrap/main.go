// Command bootstrap creates the initial partner account so the office can
// log in to a fresh deployment. It refuses to run if any user already exists.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaheenlf/slf-backend/internal/adapter/postgres"
	userrepo "github.com/shaheenlf/slf-backend/internal/adapter/postgres/user"
	"github.com/shaheenlf/slf-backend/internal/app"
	"github.com/shaheenlf/slf-backend/internal/config"
	"github.com/shaheenlf/slf-backend/internal/domain"
)

func main() {
	var (
		name     = flag.String("name", "", "partner full name")
		email    = flag.String("email", "", "login email")
		password = flag.String("password", "", "initial password (min 8 characters)")
	)
	flag.Parse()

	if *name == "" || *email == "" || len(*password) < 8 {
		log.Fatal("usage: bootstrap -name NAME -email EMAIL -password PASSWORD (min 8 chars)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		logger.Error("apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	users := userrepo.New(pool)

	existing, err := users.List(ctx)
	if err != nil {
		logger.Error("list users", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(existing) > 0 {
		logger.Error("users already exist, refusing to bootstrap", slog.Int("count", len(existing)))
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	partner, err := users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Name:         *name,
		Role:         domain.UserRolePartner,
		Email:        *email,
		Active:       true,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.Error("create partner", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("partner account created",
		slog.String("user_id", partner.ID.String()),
		slog.String("email", partner.Email),
	)
}
