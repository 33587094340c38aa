// Package user implements firm-member accounts: creation with password
// hashing, profile edits, and deactivation.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type userRepo interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements user account management.
type Service struct {
	log   *slog.Logger
	users userRepo
	audit auditRepo
	tx    txManager
}

// NewService creates a new user service.
func NewService(logger *slog.Logger, users userRepo, audit auditRepo, tx txManager) *Service {
	return &Service{
		log:   logger.With("service", "user"),
		users: users,
		audit: audit,
		tx:    tx,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}

// CreateInput holds the fields of a new firm member.
type CreateInput struct {
	Name     string
	Role     domain.UserRole
	Email    string
	Phone    string
	Password string
}

// Create registers a firm member. Partner only.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.AdminConfig, permission.Record{}) {
		return nil, domain.ErrForbidden
	}

	if len(input.Password) < 8 {
		return nil, domain.NewValidationError("password", "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Role:         input.Role,
		Email:        input.Email,
		Phone:        input.Phone,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var created *domain.User
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.users.Create(txCtx, u)
		if createErr != nil {
			return fmt.Errorf("create user: %w", createErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeUser,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes:    map[string]any{"name": created.Name, "role": string(created.Role)},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create user: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("user created", "id", created.ID, "role", created.Role)
	return created, nil
}

// UpdateInput holds the editable profile fields of a user.
type UpdateInput struct {
	Name  string
	Role  domain.UserRole
	Email string
	Phone string
}

// Update edits a user's profile and role. Partner only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.User, error) {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !permission.Can(role, actor.ID, permission.AdminConfig, permission.Record{}) {
		return nil, domain.ErrForbidden
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.Role = input.Role
	existing.Email = input.Email
	existing.Phone = input.Phone
	if err := existing.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.User
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.users.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update user: %w", updateErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeUser,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes:    map[string]any{"name": updated.Name, "role": string(updated.Role)},
		})
		if auditErr != nil {
			return fmt.Errorf("audit update user: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// Deactivate disables a user's account without removing their history.
// Partner only; partners cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.AdminConfig, permission.Record{}) {
		return domain.ErrForbidden
	}
	if actor.ID == id {
		return domain.NewValidationError("id", "you cannot deactivate your own account")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeUser,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit deactivate user: %w", auditErr)
		}
		return nil
	})
}

// Get returns one user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// List returns all firm members.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}
