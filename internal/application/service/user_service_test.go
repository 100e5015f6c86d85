package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
	roles map[uuid.UUID][]uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*entity.User),
		roles: make(map[uuid.UUID][]uint),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, params *pagination.PaginationParams, roleFilter, search string) ([]entity.User, int64, error) {
	var users []entity.User
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleID uint) error {
	r.roles[userID] = append(r.roles[userID], roleID)
	return nil
}

func (r *fakeUserRepo) SetRoles(ctx context.Context, userID uuid.UUID, roleIDs []uint) error {
	r.roles[userID] = roleIDs
	return nil
}

type fakeRoleRepo struct {
	roles []entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: []entity.Role{
		{ID: 1, Name: entity.RoleAdmin},
		{ID: 2, Name: entity.RoleStaff},
		{ID: 3, Name: entity.RoleClient},
		{ID: 4, Name: entity.RoleFactory},
		{ID: 5, Name: entity.RoleAccounting},
	}}
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	for i := range r.roles {
		if r.roles[i].Name == name {
			copied := r.roles[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]entity.Role, error) {
	return r.roles, nil
}

type fakeInviteRepo struct {
	tokens    []entity.InviteToken
	deleteErr error
}

func (r *fakeInviteRepo) Create(ctx context.Context, token *entity.InviteToken) error {
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *fakeInviteRepo) GetByToken(ctx context.Context, token string) (*entity.InviteToken, error) {
	for i := range r.tokens {
		if r.tokens[i].Token == token {
			copied := r.tokens[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeInviteRepo) MarkAsUsed(ctx context.Context, token string) error {
	for i := range r.tokens {
		if r.tokens[i].Token == token {
			r.tokens[i].Used = true
		}
	}
	return nil
}

func (r *fakeInviteRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.tokens[:0]
	for _, token := range r.tokens {
		if token.UserID != userID {
			kept = append(kept, token)
		}
	}
	r.tokens = kept
	return nil
}

type userFixture struct {
	svc        *UserService
	userRepo   *fakeUserRepo
	inviteRepo *fakeInviteRepo
	outbox     *fakeOutboxRepo
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	userRepo := newFakeUserRepo()
	inviteRepo := &fakeInviteRepo{}
	outbox := &fakeOutboxRepo{}
	svc := NewUserService(userRepo, newFakeRoleRepo(), inviteRepo, outbox, newTestComposer(t))
	return &userFixture{svc: svc, userRepo: userRepo, inviteRepo: inviteRepo, outbox: outbox}
}

func TestCreateUserSendsInviteNotPassword(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		LastName:  "Chen",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)
	assert.True(t, output.Created)

	// No password is ever generated for a provisioned account
	assert.Empty(t, output.User.Password)

	require.Len(t, f.inviteRepo.tokens, 1)
	token := f.inviteRepo.tokens[0]
	assert.Equal(t, output.User.ID, token.UserID)
	assert.True(t, token.IsValid())

	require.Len(t, f.outbox.rows, 1)
	row := f.outbox.rows[0]
	assert.Equal(t, entity.EmailKindInvite, row.Kind)
	assert.Equal(t, "mia@example.com", row.Recipient)
	assert.Contains(t, row.TextBody, token.Token)
}

func TestCreateUserIsIdempotentOnEmail(t *testing.T) {
	f := newUserFixture(t)

	first, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)

	second, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	// No second invite goes out
	assert.Len(t, f.outbox.rows, 1)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      "superuser",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
}

func TestResendInviteInvalidatesOldTokens(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)
	firstToken := f.inviteRepo.tokens[0].Token

	require.NoError(t, f.svc.ResendInvite(context.Background(), output.User.ID))

	require.Len(t, f.inviteRepo.tokens, 1)
	assert.NotEqual(t, firstToken, f.inviteRepo.tokens[0].Token)
	assert.Len(t, f.outbox.rows, 2)
}

func TestResendInviteRefusesActivatedAccount(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)

	user := f.userRepo.users[output.User.ID]
	user.Password = "$2a$10$hashedsomething"

	err = f.svc.ResendInvite(context.Background(), output.User.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)
}

func TestDeleteUserRemovesInviteTokens(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)
	require.Len(t, f.inviteRepo.tokens, 1)

	require.NoError(t, f.svc.DeleteUser(context.Background(), output.User.ID))
	assert.Empty(t, f.inviteRepo.tokens)
	assert.NotContains(t, f.userRepo.users, output.User.ID)
}

func TestDeleteUserSurfacesTokenCleanupFailure(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)

	f.inviteRepo.deleteErr = errors.New("connection reset")

	err = f.svc.DeleteUser(context.Background(), output.User.ID)
	require.Error(t, err)
	// The user row stays put when token cleanup fails
	assert.Contains(t, f.userRepo.users, output.User.ID)
}

func TestSetUserRolesValidatesClosedSet(t *testing.T) {
	f := newUserFixture(t)

	output, err := f.svc.CreateUser(context.Background(), &CreateUserInput{
		FirstName: "Mia",
		Email:     "mia@example.com",
		Role:      entity.RoleStaff,
	})
	require.NoError(t, err)

	_, err = f.svc.SetUserRoles(context.Background(), output.User.ID, []string{entity.RoleAdmin, "wizard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown role")

	_, err = f.svc.SetUserRoles(context.Background(), output.User.ID, []string{entity.RoleAdmin, entity.RoleAccounting})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 5}, f.userRepo.roles[output.User.ID])
}
