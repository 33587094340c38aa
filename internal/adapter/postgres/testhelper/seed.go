package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a lawyer user row and returns the filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:        uuid.New(),
		Name:      "Test Lawyer " + suffix,
		Role:      domain.UserRoleLawyer,
		Email:     "lawyer-" + suffix + "@test.local",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, role, email, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Role, user.Email, user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed user: %v", err)
	}

	return user
}

// SeedClient creates a client row and returns the filled domain.Client.
func SeedClient(t *testing.T, pool *pgxpool.Pool) domain.Client {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	client := domain.Client{
		ID:        uuid.New(),
		Name:      "Test Client " + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO clients (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		client.ID, client.Name, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed client: %v", err)
	}

	return client
}

// SeedCase creates an active case owned by owner for client, with its first
// session date a week out, and returns the filled domain.Case.
func SeedCase(t *testing.T, pool *pgxpool.Pool, owner domain.User, client domain.Client) domain.Case {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.Case{
		ID:               uuid.New(),
		CaseNo:           suffix,
		Year:             "2026",
		StageType:        "أول درجة",
		ClientIDs:        []uuid.UUID{client.ID},
		PrimaryClientID:  client.ID,
		ClientRole:       "مدعي",
		OpponentName:     "خصم " + suffix,
		OpponentRole:     "مدعى عليه",
		Court:            "محكمة الاختبار",
		Circuit:          "1",
		CaseType:         domain.CaseTypeCivil,
		Subject:          "موضوع " + suffix,
		FirstSessionDate: now.AddDate(0, 0, 7),
		OwnerID:          owner.ID,
		Status:           domain.CaseStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cases (id, case_no, year, stage_type, client_ids, primary_client_id,
		                    client_role, opponent_name, opponent_role, court, circuit,
		                    case_type, subject, first_session_date, owner_id, status,
		                    created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.CaseNo, c.Year, c.StageType, c.ClientIDs, c.PrimaryClientID,
		c.ClientRole, c.OpponentName, c.OpponentRole, c.Court, c.Circuit,
		c.CaseType, c.Subject, c.FirstSessionDate, c.OwnerID, c.Status,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: seed case: %v", err)
	}

	return c
}
