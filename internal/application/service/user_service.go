package service

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/google/uuid"
)

const inviteTokenTTL = 7 * 24 * time.Hour

// UserService handles user management operations
type UserService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	inviteRepo repository.InviteTokenRepository
	outboxRepo repository.OutboxRepository
	composer   *mailer.Composer
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	inviteRepo repository.InviteTokenRepository,
	outboxRepo repository.OutboxRepository,
	composer *mailer.Composer,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		inviteRepo: inviteRepo,
		outboxRepo: outboxRepo,
		composer:   composer,
	}
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Role      string
}

// CreateUserOutput reports the created or pre-existing user. Created is
// false when a user with the email already existed; callers treat that as
// success so provisioning scripts can run twice safely.
type CreateUserOutput struct {
	User    *entity.User
	Created bool
}

// CreateUser provisions a user and emails them a single-use invite link to
// set their own password. No password is ever generated or stored here.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	role, err := s.roleRepo.GetByName(ctx, input.Role)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewInvalidArgumentError("Unknown role: " + input.Role)
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CreateUserOutput{User: existing, Created: false}, nil
	}

	user := &entity.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Active:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}

	if err := s.sendInvite(ctx, user); err != nil {
		return nil, err
	}

	return &CreateUserOutput{User: user, Created: true}, nil
}

// ResendInvite issues a fresh invite token for a user who has not yet set a
// password, invalidating earlier tokens.
func (s *UserService) ResendInvite(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}
	if user.Password != "" {
		return apperror.NewFailedPreconditionError("User has already activated their account")
	}

	if err := s.inviteRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	return s.sendInvite(ctx, user)
}

func (s *UserService) sendInvite(ctx context.Context, user *entity.User) error {
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

	rendered, err := s.composer.Invite(user.FirstName, user.Email, token)
	if err != nil {
		return err
	}

	return s.outboxRepo.Enqueue(ctx, []entity.EmailOutbox{{
		Kind:      entity.EmailKindInvite,
		Recipient: user.Email,
		Subject:   rendered.Subject,
		HTMLBody:  rendered.HTMLBody,
		TextBody:  rendered.TextBody,
	}})
}

// GetUser retrieves a user with roles by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// ListUsers lists users with optional role and search filters
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, roleFilter, search string) (*pagination.PaginatedResult[entity.User], error) {
	users, total, err := s.userRepo.List(ctx, params, roleFilter, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// UpdateUserInput represents the update user input
type UpdateUserInput struct {
	ID        uuid.UUID
	FirstName *string
	LastName  *string
	Phone     *string
	Active    *bool
}

// UpdateUser updates a user's profile fields and active flag
func (s *UserService) UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetUserRoles replaces a user's roles. Every name must belong to the
// closed role set.
func (s *UserService) SetUserRoles(ctx context.Context, userID uuid.UUID, roleNames []string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	roleIDs := make([]uint, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := s.roleRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, apperror.NewInvalidArgumentError("Unknown role: " + name)
		}
		roleIDs = append(roleIDs, role.ID)
	}

	if err := s.userRepo.SetRoles(ctx, userID, roleIDs); err != nil {
		return nil, err
	}

	return s.userRepo.GetWithRoles(ctx, userID)
}

// DeleteUser soft-deletes a user account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewNotFoundError("User")
	}

	if err := s.inviteRepo.DeleteByUser(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ListRoles returns every role with its permissions
func (s *UserService) ListRoles(ctx context.Context) ([]entity.Role, error) {
	return s.roleRepo.List(ctx)
}
