package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/token"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to a request. Handlers
// reached through Authenticator.Require may assume it is valid, active and
// approved.
type Principal struct {
	UserID     uuid.UUID
	Email      string
	Role       models.Role
	EmployeeID *uuid.UUID
}

// Authenticator verifies bearer tokens and resolves the current user.
// Identity is re-derived from the token and the identity store on every
// request; nothing is trusted from the token beyond subject id and role.
type Authenticator struct {
	tokens *token.Service
	users  repository.UserRepositoryInterface
	logger *logrus.Entry
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(tokens *token.Service, users repository.UserRepositoryInterface, logger *logrus.Logger) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		logger: logger.WithField("component", "auth_middleware"),
	}
}

// Require returns middleware that rejects the request with 401 unless a
// valid bearer token referencing an active, approved account is presented.
func (a *Authenticator) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, NewUnauthorizedError(ErrCodeNoCredential, "authentication required"))
			return
		}

		claims, err := a.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				Abort(c, NewUnauthorizedError(ErrCodeTokenExpired, "token expired"))
				return
			}
			Abort(c, NewUnauthorizedError(ErrCodeInvalidToken, "invalid token"))
			return
		}

		user, err := a.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				Abort(c, NewUnauthorizedError(ErrCodeUnknownSubject, "invalid token"))
				return
			}
			a.logger.WithError(err).Error("identity store lookup failed")
			Abort(c, NewUnauthorizedError(ErrCodeUnknownSubject, "authentication failed"))
			return
		}

		// Distinguished in the body so clients can show "awaiting approval"
		// instead of "bad credentials"
		if user.ApprovalStatus != models.ApprovalApproved {
			Abort(c, NewUnauthorizedError(ErrCodePendingApproval, "account pending approval"))
			return
		}
		if !user.IsActive {
			Abort(c, NewUnauthorizedError(ErrCodeDeactivated, "account deactivated"))
			return
		}

		c.Set(principalKey, Principal{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			EmployeeID: user.EmployeeID,
		})

		// Best-effort last-seen update, off the request's failure path
		go func(id uuid.UUID) {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := a.users.TouchLastSeen(ctx, id); err != nil {
				a.logger.WithError(err).Debug("last-seen update failed")
			}
		}(user.ID)

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the gin context
func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
