package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaheenlf/slf-backend/internal/auth"
	"github.com/shaheenlf/slf-backend/internal/domain"
)

type mockUserRepo struct {
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newService(t *testing.T, users ...*domain.User) *Service {
	t.Helper()
	repo := &mockUserRepo{byID: map[uuid.UUID]*domain.User{}, byEmail: map[string]*domain.User{}}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byEmail[u.Email] = u
	}
	jwt := auth.NewJWTManager("test-secret-at-least-32-characters!", "slf-backend-test", time.Hour)
	return NewService(slog.New(slog.DiscardHandler), repo, jwt)
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Name:         "سارة الشاهين",
		Role:         domain.UserRolePartner,
		Email:        "sara@firm.example",
		Active:       true,
		PasswordHash: string(hash),
	}
}

func TestLoginPassword(t *testing.T) {
	t.Parallel()
	user := testUser(t, "s3cret-pass")
	svc := newService(t, user)

	result, err := svc.LoginPassword(context.Background(), "sara@firm.example", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, user.ID, result.User.ID)

	id, role, err := svc.ValidateToken(context.Background(), result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, domain.UserRolePartner, role)
}

func TestLoginPassword_WrongPassword(t *testing.T) {
	t.Parallel()
	svc := newService(t, testUser(t, "s3cret-pass"))

	_, err := svc.LoginPassword(context.Background(), "sara@firm.example", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginPassword_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.LoginPassword(context.Background(), "nobody@firm.example", "pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginPassword_InactiveUser(t *testing.T) {
	t.Parallel()
	user := testUser(t, "s3cret-pass")
	user.Active = false
	svc := newService(t, user)

	_, err := svc.LoginPassword(context.Background(), "sara@firm.example", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginPassword_EmptyInput(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.LoginPassword(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateToken_DeactivatedAfterIssue(t *testing.T) {
	t.Parallel()
	user := testUser(t, "s3cret-pass")
	svc := newService(t, user)

	result, err := svc.LoginPassword(context.Background(), "sara@firm.example", "s3cret-pass")
	require.NoError(t, err)

	user.Active = false
	_, _, err = svc.ValidateToken(context.Background(), result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, _, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
