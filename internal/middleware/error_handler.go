package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/response"
)

// AppError is a typed application error carrying the HTTP status it maps to.
// The code never reaches clients; it is for server-side logs only.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e AppError) Error() string {
	return e.Message
}

// Error codes for the failure taxonomy
const (
	ErrCodeNoCredential     = "NO_CREDENTIAL"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeUnknownSubject   = "UNKNOWN_SUBJECT"
	ErrCodePendingApproval  = "PENDING_APPROVAL"
	ErrCodeDeactivated      = "DEACTIVATED"
	ErrCodeInsufficientRole = "INSUFFICIENT_ROLE"
	ErrCodeNotOwner         = "NOT_OWNER"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUpstream         = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_SERVER_ERROR"
)

// NewUnauthorizedError creates a 401 error
func NewUnauthorizedError(code, message string) AppError {
	return AppError{Code: code, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(code, message string) AppError {
	return AppError{Code: code, Message: message, StatusCode: http.StatusForbidden}
}

// NewValidationError creates a 400 error
func NewValidationError(message string) AppError {
	return AppError{Code: ErrCodeValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(resource string) AppError {
	return AppError{Code: ErrCodeNotFound, Message: resource + " not found", StatusCode: http.StatusNotFound}
}

// ErrorHandler converts errors attached to the gin context into the standard
// error envelope. Unrecognized errors become a generic 500; their details go
// to the server log, never to the client.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("component", "error_handler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		appErr, ok := err.(AppError)
		if !ok {
			log.WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"request_id": c.GetString("request_id"),
			}).WithError(err).Error("unhandled error")
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}

		log.WithFields(logrus.Fields{
			"code":       appErr.Code,
			"status":     appErr.StatusCode,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("request_id"),
		}).Warn(appErr.Message)
		response.Error(c, appErr.StatusCode, appErr.Message)
	}
}

// Abort writes the error envelope for an AppError and stops the chain.
// Middleware uses this to short-circuit before business or audit logic runs.
func Abort(c *gin.Context, err AppError) {
	_ = c.Error(err)
	response.AbortError(c, err.StatusCode, err.Message)
}
