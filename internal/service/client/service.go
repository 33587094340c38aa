// Package client implements client records and their power-of-attorney
// metadata.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/permission"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

type clientRepo interface {
	Create(ctx context.Context, client *domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, client *domain.Client) (*domain.Client, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type auditRepo interface {
	Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements client business logic.
type Service struct {
	log     *slog.Logger
	clients clientRepo
	audit   auditRepo
	tx      txManager
}

// NewService creates a new client service.
func NewService(logger *slog.Logger, clients clientRepo, audit auditRepo, tx txManager) *Service {
	return &Service{
		log:     logger.With("service", "client"),
		clients: clients,
		audit:   audit,
		tx:      tx,
	}
}

func actorFromCtx(ctx context.Context) (ctxutil.Actor, domain.UserRole, error) {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return ctxutil.Actor{}, "", domain.ErrUnauthorized
	}
	return actor, domain.UserRole(actor.Role), nil
}

// Input holds the writable fields of a client.
type Input struct {
	Name         string
	NationalID   string
	Phone        string
	Address      string
	POANumber    string
	NotaryOffice string
	POADate      *time.Time
	Notes        string
}

func (in Input) apply(c *domain.Client) {
	c.Name = in.Name
	c.NationalID = in.NationalID
	c.Phone = in.Phone
	c.Address = in.Address
	c.POANumber = in.POANumber
	c.NotaryOffice = in.NotaryOffice
	c.POADate = in.POADate
	c.Notes = in.Notes
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, input Input) (*domain.Client, error) {
	actor, _, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	c := &domain.Client{ID: uuid.New()}
	input.apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Client
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.clients.Create(txCtx, c)
		if createErr != nil {
			return fmt.Errorf("create client: %w", createErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeClient,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes:    map[string]any{"name": created.Name},
		})
		if auditErr != nil {
			return fmt.Errorf("audit create client: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("client created", "id", created.ID)
	return created, nil
}

// Update edits a client.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (*domain.Client, error) {
	actor, _, err := actorFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(existing)
	if err := existing.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Client
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.clients.Update(txCtx, existing)
		if updateErr != nil {
			return fmt.Errorf("update client: %w", updateErr)
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeClient,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionUpdate,
			Changes:    map[string]any{"name": updated.Name},
		})
		if auditErr != nil {
			return fmt.Errorf("audit update client: %w", auditErr)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// Get returns one client by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.clients.GetByID(ctx, id)
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	if _, _, err := actorFromCtx(ctx); err != nil {
		return nil, err
	}
	return s.clients.List(ctx)
}

// Delete soft-deletes a client. Partner only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, role, err := actorFromCtx(ctx)
	if err != nil {
		return err
	}
	if !permission.Can(role, actor.ID, permission.DeleteRecords, permission.Record{}) {
		return domain.ErrForbidden
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clients.SoftDelete(txCtx, id); err != nil {
			return err
		}
		_, auditErr := s.audit.Create(txCtx, &domain.AuditRecord{
			ActorID:    actor.ID,
			EntityType: domain.EntityTypeClient,
			EntityID:   &id,
			Action:     domain.AuditActionDelete,
		})
		if auditErr != nil {
			return fmt.Errorf("audit delete client: %w", auditErr)
		}
		return nil
	})
}
