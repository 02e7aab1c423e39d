package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"hrms-platform/internal/events"
	"hrms-platform/internal/middleware"
	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/response"
	"hrms-platform/internal/token"
)

// AuthHandler handles registration, login and account administration
type AuthHandler struct {
	users     repository.UserRepositoryInterface
	tokens    *token.Service
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repository.UserRepositoryInterface, tokens *token.Service, publisher *events.Publisher, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger.WithField("component", "auth_handler"),
	}
}

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Email      string     `json:"email" binding:"required,email"`
	Password   string     `json:"password" binding:"required,min=8"`
	Role       string     `json:"role" binding:"omitempty,oneof=ADMIN HR EMPLOYEE"`
	EmployeeID *uuid.UUID `json:"employeeId"`
}

// Register creates a new account in PENDING state. The account cannot
// authenticate until an administrator approves it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid registration payload")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		_ = c.Error(err)
		return
	}

	role := models.RoleEmployee
	if req.Role != "" {
		role = models.Role(req.Role)
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           role,
		ApprovalStatus: models.ApprovalPending,
		IsActive:       true,
		EmployeeID:     req.EmployeeID,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.logger.WithError(err).Error("failed to create user")
		response.Error(c, http.StatusConflict, "account could not be created")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"approvalStatus": user.ApprovalStatus,
	})
}

// LoginRequest is the payload for credential login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a bearer token. Accounts that are
// not yet approved or have been deactivated never receive a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid login payload")
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		_ = c.Error(err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		response.Error(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.ApprovalStatus != models.ApprovalApproved {
		response.Error(c, http.StatusUnauthorized, "account pending approval")
		return
	}
	if !user.IsActive {
		response.Error(c, http.StatusUnauthorized, "account deactivated")
		return
	}

	raw, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.publisher.PublishLogin(user.ID, user.Email, string(user.Role)); err != nil {
		h.logger.WithError(err).Warn("failed to publish login event")
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": raw,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Me returns the authenticated user's own account
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), principal.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ListUsers returns all accounts, paginated
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, pageSize, offset := response.Pagination(c)

	users, total, err := h.users.List(c.Request.Context(), pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, users, len(users), total, page, pageSize)
}

// ApprovalRequest is the payload for an approval decision
type ApprovalRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// SetApproval approves or rejects a pending account
func (h *AuthHandler) SetApproval(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid approval payload")
		return
	}

	if err := h.users.SetApprovalStatus(c.Request.Context(), id, models.ApprovalStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "user not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "approvalStatus": req.Status})
}

// Deactivate disables an account. Outstanding tokens stay valid until
// expiry; the per-request active recheck blocks them immediately.
func (h *AuthHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.SetActive(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "user not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "isActive": false})
}
