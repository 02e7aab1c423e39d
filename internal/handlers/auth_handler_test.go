package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/token"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) SetApprovalStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockUserRepo) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func authRig(users *mockUserRepo, tokens *token.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(users, tokens, nil, quietLogger())

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func hashedUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:             uuid.New(),
		Email:          "jordan@example.com",
		PasswordHash:   string(hash),
		Role:           models.RoleEmployee,
		ApprovalStatus: models.ApprovalApproved,
		IsActive:       true,
	}
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	users := new(mockUserRepo)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ApprovalStatus == models.ApprovalPending &&
			u.Role == models.RoleEmployee &&
			u.PasswordHash != "" &&
			u.PasswordHash != "str0ngpassword"
	})).Return(nil)

	router := authRig(users, token.NewService("secret", time.Hour))
	w := postJSON(router, "/register", gin.H{
		"email":    "jordan@example.com",
		"password": "str0ngpassword",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "PENDING")
	users.AssertExpectations(t)
}

func TestRegisterRejectsWeakPayload(t *testing.T) {
	users := new(mockUserRepo)
	router := authRig(users, token.NewService("secret", time.Hour))

	w := postJSON(router, "/register", gin.H{"email": "not-an-email", "password": "short"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	users := new(mockUserRepo)
	user := hashedUser("str0ngpassword")
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	tokens := token.NewService("secret", time.Hour)
	router := authRig(users, tokens)

	w := postJSON(router, "/login", gin.H{"email": user.Email, "password": "str0ngpassword"})
	assert.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	claims, err := tokens.Verify(payload.Data.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Role, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	user := hashedUser("str0ngpassword")
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	router := authRig(users, token.NewService("secret", time.Hour))
	w := postJSON(router, "/login", gin.H{"email": user.Email, "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)

	router := authRig(users, token.NewService("secret", time.Hour))
	w := postJSON(router, "/login", gin.H{"email": "nobody@example.com", "password": "whatever"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestLoginPendingAccount(t *testing.T) {
	users := new(mockUserRepo)
	user := hashedUser("str0ngpassword")
	user.ApprovalStatus = models.ApprovalPending
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	router := authRig(users, token.NewService("secret", time.Hour))
	w := postJSON(router, "/login", gin.H{"email": user.Email, "password": "str0ngpassword"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account pending approval")
}

func TestLoginDeactivatedAccount(t *testing.T) {
	users := new(mockUserRepo)
	user := hashedUser("str0ngpassword")
	user.IsActive = false
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	router := authRig(users, token.NewService("secret", time.Hour))
	w := postJSON(router, "/login", gin.H{"email": user.Email, "password": "str0ngpassword"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account deactivated")
}
