package service

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/google/uuid"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	passwordResetRepo repository.PasswordResetTokenRepository
	inviteRepo        repository.InviteTokenRepository
	outboxRepo        repository.OutboxRepository
	jwtManager        *utils.JWTManager
	composer          *mailer.Composer
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	passwordResetRepo repository.PasswordResetTokenRepository,
	inviteRepo repository.InviteTokenRepository,
	outboxRepo repository.OutboxRepository,
	jwtManager *utils.JWTManager,
	composer *mailer.Composer,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		roleRepo:          roleRepo,
		passwordResetRepo: passwordResetRepo,
		inviteRepo:        inviteRepo,
		outboxRepo:        outboxRepo,
		jwtManager:        jwtManager,
		composer:          composer,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	// Users awaiting invite acceptance have no password yet
	if user.Password == "" || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, apperror.New(403, apperror.CodePermissionDenied, "Account is deactivated")
	}

	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	if !user.Active {
		return nil, apperror.New(403, apperror.CodePermissionDenied, "Account is deactivated")
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.FullName(), user.RoleNames(), user.GetPermissions())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewInvalidArgumentError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword initiates the password reset process. The reset email goes
// through the outbox like every other notification. Always succeeds from the
// caller's perspective to prevent email enumeration.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if user == nil {
		return nil
	}

	// Invalidate earlier tokens
	_ = s.passwordResetRepo.DeleteByEmail(ctx, email)

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}

	resetToken := &entity.PasswordResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(1 * time.Hour),
		Used:      false,
	}

	if err := s.passwordResetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	rendered, err := s.composer.PasswordReset(email, token)
	if err != nil {
		return err
	}

	return s.outboxRepo.Enqueue(ctx, []entity.EmailOutbox{{
		Kind:      entity.EmailKindPasswordReset,
		Recipient: email,
		Subject:   rendered.Subject,
		HTMLBody:  rendered.HTMLBody,
		TextBody:  rendered.TextBody,
	}})
}

// ResetPasswordInput represents the reset password input
type ResetPasswordInput struct {
	Email       string
	Token       string
	NewPassword string
}

// ResetPassword resets the user's password using a valid token
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	resetToken, err := s.passwordResetRepo.GetByToken(ctx, input.Token)
	if err != nil {
		return err
	}
	if resetToken == nil || resetToken.Email != input.Email || !resetToken.IsValid() {
		return apperror.NewInvalidArgumentError("Invalid or expired reset token")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NewInvalidArgumentError("Invalid or expired reset token")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.passwordResetRepo.MarkAsUsed(ctx, input.Token); err != nil {
		// Password was already changed; token cleanup is best-effort
		return nil
	}

	_ = s.passwordResetRepo.DeleteByEmail(ctx, input.Email)

	return nil
}

// AcceptInviteInput represents the invite acceptance input
type AcceptInviteInput struct {
	Token    string
	Password string
}

// AcceptInvite activates an invited account: validates the single-use token,
// sets the user's chosen password and logs them in.
func (s *AuthService) AcceptInvite(ctx context.Context, input *AcceptInviteInput) (*LoginOutput, error) {
	inviteToken, err := s.inviteRepo.GetByToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if inviteToken == nil || !inviteToken.IsValid() {
		return nil, apperror.NewInvalidArgumentError("Invalid or expired invite token")
	}

	user, err := s.userRepo.GetWithRoles(ctx, inviteToken.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewInvalidArgumentError("Invalid or expired invite token")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user.Password = hashedPassword
	user.Active = true
	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.inviteRepo.MarkAsUsed(ctx, input.Token); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// OAuthLoginInput carries the identity asserted by the OAuth provider
type OAuthLoginInput struct {
	Provider   string
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
	Photo      string
}

// OAuthLogin finds or creates a user for an OAuth identity and logs them in.
// New OAuth users get the staff role only when their email already matches an
// invited user; otherwise they land with no roles and an admin must assign
// one.
func (s *AuthService) OAuthLogin(ctx context.Context, input *OAuthLoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &entity.User{
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      input.Email,
			Provider:   input.Provider,
			ProviderID: &input.ProviderID,
			Active:     true,
		}
		if input.Photo != "" {
			user.Photo = &input.Photo
		}
		now := time.Now()
		user.EmailVerifiedAt = &now

		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if !user.Active {
			return nil, apperror.New(403, apperror.CodePermissionDenied, "Account is deactivated")
		}
		if user.Provider == "local" {
			user.Provider = input.Provider
			user.ProviderID = &input.ProviderID
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	user, err = s.userRepo.GetWithRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}
