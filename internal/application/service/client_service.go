package service

import (
	"context"
	"strings"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/google/uuid"
)

// ClientService handles client profile and portal access operations
type ClientService struct {
	clientRepo   repository.ClientRepository
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	runRepo      repository.RunRepository
	inviteRepo   repository.InviteTokenRepository
	outboxRepo   repository.OutboxRepository
	settingsRepo repository.SettingsRepository
	composer     *mailer.Composer
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	runRepo repository.RunRepository,
	inviteRepo repository.InviteTokenRepository,
	outboxRepo repository.OutboxRepository,
	settingsRepo repository.SettingsRepository,
	composer *mailer.Composer,
) *ClientService {
	return &ClientService{
		clientRepo:   clientRepo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		runRepo:      runRepo,
		inviteRepo:   inviteRepo,
		outboxRepo:   outboxRepo,
		settingsRepo: settingsRepo,
		composer:     composer,
	}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	Name      string
	Email     string
	Phone     *string
	Address   *string
	Country   *string
	CreatedBy uuid.UUID
	// Invite sends a portal invite immediately after creation
	Invite bool
}

// CreateClient creates a client profile and optionally invites them to the
// portal. The invite creates a linked user account with the client role and
// a single-use token to set their own password; no password is generated.
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	existing, err := s.clientRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A client with this email already exists")
	}

	client := &entity.Client{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Country:   input.Country,
		CreatedBy: input.CreatedBy,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	if input.Invite {
		if err := s.InviteClient(ctx, client.ID); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// InviteClient grants a client portal access: it creates or links a user
// account carrying the client role and emails a single-use invite token.
func (s *ClientService) InviteClient(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.ClientOnboarding {
		return apperror.NewFailedPreconditionError("Client onboarding is disabled in settings")
	}

	user, err := s.userRepo.GetByEmail(ctx, client.Email)
	if err != nil {
		return err
	}

	if user == nil {
		firstName, lastName := splitName(client.Name)
		user = &entity.User{
			FirstName: firstName,
			LastName:  lastName,
			Email:     client.Email,
			Phone:     client.Phone,
			Active:    true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}

		role, err := s.roleRepo.GetByName(ctx, entity.RoleClient)
		if err != nil {
			return err
		}
		if role != nil {
			if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
				return err
			}
		}
	}

	if client.UserID == nil {
		client.UserID = &user.ID
		if err := s.clientRepo.Update(ctx, client); err != nil {
			return err
		}
	}

	if err := s.inviteRepo.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}

	inviteToken := &entity.InviteToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(inviteTokenTTL),
	}
	if err := s.inviteRepo.Create(ctx, inviteToken); err != nil {
		return err
	}

	rendered, err := s.composer.Invite(client.Name, client.Email, token)
	if err != nil {
		return err
	}

	return s.outboxRepo.Enqueue(ctx, []entity.EmailOutbox{{
		Kind:      entity.EmailKindInvite,
		Recipient: client.Email,
		Subject:   rendered.Subject,
		HTMLBody:  rendered.HTMLBody,
		TextBody:  rendered.TextBody,
	}})
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// GetClientByUserID resolves the client profile behind a portal login
func (s *ClientService) GetClientByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists clients with optional search
func (s *ClientService) ListClients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	ID      uuid.UUID
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Country *string
}

// UpdateClient updates a client profile
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if input.Email != nil && *input.Email != client.Email {
		existing, err := s.clientRepo.GetByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("A client with this email already exists")
		}
		client.Email = *input.Email
	}
	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Country != nil {
		client.Country = input.Country
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient soft-deletes a client profile. Their guitars and invoices
// keep their history.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	return s.clientRepo.Delete(ctx, id)
}

// AssignRun gives a client visibility of a run in the portal
func (s *ClientService) AssignRun(ctx context.Context, clientID, runID uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return apperror.NewNotFoundError("Run")
	}

	return s.clientRepo.AssignRun(ctx, clientID, runID)
}

// RemoveRun removes a client's visibility of a run
func (s *ClientService) RemoveRun(ctx context.Context, clientID, runID uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	return s.clientRepo.RemoveRun(ctx, clientID, runID)
}
