package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fretline/buildtrack-api/internal/application/service"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users map[uuid.UUID]*entity.User
	roles map[uuid.UUID][]uint
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users: make(map[uuid.UUID]*entity.User),
		roles: make(map[uuid.UUID][]uint),
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetWithRoles(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(ctx context.Context, params *pagination.PaginationParams, roleFilter, search string) ([]entity.User, int64, error) {
	var users []entity.User
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (r *memUserRepo) AssignRole(ctx context.Context, userID uuid.UUID, roleID uint) error {
	r.roles[userID] = append(r.roles[userID], roleID)
	return nil
}

func (r *memUserRepo) SetRoles(ctx context.Context, userID uuid.UUID, roleIDs []uint) error {
	r.roles[userID] = roleIDs
	return nil
}

type memRoleRepo struct{}

func (memRoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	for i, known := range []string{
		entity.RoleAdmin, entity.RoleStaff, entity.RoleClient,
		entity.RoleFactory, entity.RoleAccounting,
	} {
		if known == name {
			return &entity.Role{ID: uint(i + 1), Name: name}, nil
		}
	}
	return nil, nil
}

func (memRoleRepo) List(ctx context.Context) ([]entity.Role, error) {
	return nil, nil
}

type memInviteRepo struct {
	tokens []entity.InviteToken
}

func (r *memInviteRepo) Create(ctx context.Context, token *entity.InviteToken) error {
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *memInviteRepo) GetByToken(ctx context.Context, token string) (*entity.InviteToken, error) {
	return nil, nil
}

func (r *memInviteRepo) MarkAsUsed(ctx context.Context, token string) error {
	return nil
}

func (r *memInviteRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type memOutbox struct {
	rows []entity.EmailOutbox
}

func (r *memOutbox) Enqueue(ctx context.Context, rows []entity.EmailOutbox) error {
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *memOutbox) ClaimPending(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]entity.EmailOutbox, error) {
	return nil, nil
}

func (r *memOutbox) MarkSent(ctx context.Context, id uuid.UUID) error { return nil }

func (r *memOutbox) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, final bool) error {
	return nil
}

func (r *memOutbox) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (r *memOutbox) List(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) ([]entity.EmailOutbox, int64, error) {
	return r.rows, int64(len(r.rows)), nil
}

type userHandlerFixture struct {
	router   *gin.Engine
	userRepo *memUserRepo
	callerID uuid.UUID
}

// newUserHandlerFixture wires the user handler onto a real router, with a
// stand-in for the auth middleware that stamps a fixed caller identity.
func newUserHandlerFixture(t *testing.T) *userHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	composer, err := mailer.NewComposer(mailer.Branding{
		AppName:   "Fretline",
		PortalURL: "https://portal.example.com",
	})
	require.NoError(t, err)

	userRepo := newMemUserRepo()
	svc := service.NewUserService(userRepo, memRoleRepo{}, &memInviteRepo{}, &memOutbox{}, composer)
	h := NewUserHandler(svc)

	callerID := uuid.New()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", callerID)
		c.Set("user_email", "owner@example.com")
		c.Set("user_name", "Workshop Owner")
	})
	router.POST("/users", h.Create)
	router.PUT("/profile", h.UpdateProfile)

	return &userHandlerFixture{router: router, userRepo: userRepo, callerID: callerID}
}

func (f *userHandlerFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestCreateUserDuplicateEmailEnvelope(t *testing.T) {
	f := newUserHandlerFixture(t)

	payload := map[string]interface{}{
		"first_name": "Mia",
		"last_name":  "Chen",
		"email":      "mia@example.com",
		"role":       entity.RoleStaff,
	}

	rec, envelope := f.do(t, http.MethodPost, "/users", payload)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, envelope["success"])
	firstID := envelope["data"].(map[string]interface{})["id"]

	// The second create finds the account and reports it, success stays
	// false so callers can tell nothing new was provisioned.
	rec, envelope = f.do(t, http.MethodPost, "/users", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, apperror.CodeAlreadyExists, envelope["code"])
	assert.Equal(t, firstID, envelope["data"].(map[string]interface{})["id"])
}

func TestUpdateProfileEditsOwnAccountOnly(t *testing.T) {
	f := newUserHandlerFixture(t)

	require.NoError(t, f.userRepo.Create(context.Background(), &entity.User{
		ID:        f.callerID,
		FirstName: "Workshop",
		LastName:  "Owner",
		Email:     "owner@example.com",
		Active:    true,
	}))

	newPhone := "+15550001111"
	rec, envelope := f.do(t, http.MethodPut, "/profile", map[string]interface{}{
		"first_name": "Wendy",
		"phone":      newPhone,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])

	stored := f.userRepo.users[f.callerID]
	assert.Equal(t, "Wendy", stored.FirstName)
	assert.Equal(t, "Owner", stored.LastName)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, newPhone, *stored.Phone)
	// Self-service cannot deactivate the account
	assert.True(t, stored.Active)
}
