package middleware

import (
	"context"
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

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func authTestRig(users *mockUserRepo, tokens *token.Service) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	handlerCalled := false

	authenticator := NewAuthenticator(tokens, users, testLogger())
	router := gin.New()
	router.GET("/protected", authenticator.Require(), func(c *gin.Context) {
		handlerCalled = true
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"userId": principal.UserID})
	})
	return router, &handlerCalled
}

func activeUser(id uuid.UUID, role models.Role) *models.User {
	return &models.User{
		ID:             id,
		Email:          "user@example.com",
		Role:           role,
		ApprovalStatus: models.ApprovalApproved,
		IsActive:       true,
	}
}

func TestRequireMissingCredential(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	for _, header := range []string{"", "Bearer ", "Basic abc", "justonetoken"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authentication required")
	}
	assert.False(t, *handlerCalled)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRequireForgedToken(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	other := token.NewService("other-secret", time.Hour)
	forged, err := other.Issue(uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
	assert.False(t, *handlerCalled)
}

func TestRequireExpiredToken(t *testing.T) {
	users := new(mockUserRepo)
	past := time.Now().Add(-2 * time.Hour)
	issuer := token.NewServiceWithClock("secret", time.Hour, func() time.Time { return past })
	verifier := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, verifier)

	expired, err := issuer.Issue(uuid.New(), models.RoleEmployee)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
	assert.False(t, *handlerCalled)
}

func TestRequireUnknownSubject(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	userID := uuid.New()
	users.On("GetByID", mock.Anything, userID).Return(nil, repository.ErrNotFound)

	raw, err := tokens.Issue(userID, models.RoleEmployee)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
	assert.False(t, *handlerCalled)
	users.AssertExpectations(t)
}

func TestRequirePendingAccount(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	userID := uuid.New()
	pending := activeUser(userID, models.RoleEmployee)
	pending.ApprovalStatus = models.ApprovalPending
	users.On("GetByID", mock.Anything, userID).Return(pending, nil)

	raw, err := tokens.Issue(userID, models.RoleEmployee)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account pending approval")
	assert.False(t, *handlerCalled)
}

func TestRequireDeactivatedAccount(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	userID := uuid.New()
	deactivated := activeUser(userID, models.RoleEmployee)
	deactivated.IsActive = false
	users.On("GetByID", mock.Anything, userID).Return(deactivated, nil)

	raw, err := tokens.Issue(userID, models.RoleEmployee)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account deactivated")
	assert.False(t, *handlerCalled)
}

func TestRequireValidToken(t *testing.T) {
	users := new(mockUserRepo)
	tokens := token.NewService("secret", time.Hour)
	router, handlerCalled := authTestRig(users, tokens)

	userID := uuid.New()
	users.On("GetByID", mock.Anything, userID).Return(activeUser(userID, models.RoleHR), nil)
	users.On("TouchLastSeen", mock.Anything, userID).Return(nil).Maybe()

	raw, err := tokens.Issue(userID, models.RoleHR)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handlerCalled)
	assert.Contains(t, w.Body.String(), userID.String())
}
