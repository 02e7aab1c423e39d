package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/middleware"
	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/response"
)

// LeaveHandler handles HTTP requests for leave requests
type LeaveHandler struct {
	leaves repository.LeaveRepositoryInterface
	logger *logrus.Entry
}

// NewLeaveHandler creates a new LeaveHandler
func NewLeaveHandler(leaves repository.LeaveRepositoryInterface, logger *logrus.Logger) *LeaveHandler {
	return &LeaveHandler{
		leaves: leaves,
		logger: logger.WithField("component", "leave_handler"),
	}
}

// LeaveRequestPayload is the payload for filing a leave request
type LeaveRequestPayload struct {
	LeaveType string    `json:"leaveType" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	Reason    string    `json:"reason"`
}

// Create files a leave request on behalf of the authenticated employee.
// The owning employee comes from the verified principal, never from the
// request body.
func (h *LeaveHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if principal.EmployeeID == nil {
		response.Error(c, http.StatusForbidden, "account has no employee record")
		return
	}

	var req LeaveRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid leave payload")
		return
	}
	if !req.EndDate.After(req.StartDate) && !req.EndDate.Equal(req.StartDate) {
		response.Error(c, http.StatusBadRequest, "end date precedes start date")
		return
	}

	leave := &models.LeaveRequest{
		EmployeeID: *principal.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
		Status:     models.LeaveStatusPending,
	}
	if err := h.leaves.Create(c.Request.Context(), leave); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetAuditEntityID(c, leave.ID.String())
	response.Success(c, http.StatusCreated, leave)
}

// Get retrieves a single leave request. Ownership is enforced by the
// route middleware before this handler runs.
func (h *LeaveHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid leave id")
		return
	}

	leave, err := h.leaves.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "leave request not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, leave)
}

// ListMine retrieves the authenticated employee's own leave requests
func (h *LeaveHandler) ListMine(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if principal.EmployeeID == nil {
		response.Error(c, http.StatusForbidden, "account has no employee record")
		return
	}

	page, pageSize, offset := response.Pagination(c)
	leaves, total, err := h.leaves.ListByEmployee(c.Request.Context(), *principal.EmployeeID, pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, leaves, len(leaves), total, page, pageSize)
}

// List retrieves all leave requests, paginated
func (h *LeaveHandler) List(c *gin.Context) {
	page, pageSize, offset := response.Pagination(c)

	leaves, total, err := h.leaves.List(c.Request.Context(), pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, leaves, len(leaves), total, page, pageSize)
}

// DecisionPayload is the payload for deciding a leave request
type DecisionPayload struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// Decide approves or rejects a leave request and records the deciding user
func (h *LeaveHandler) Decide(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid leave id")
		return
	}

	var req DecisionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid decision payload")
		return
	}

	// The repository only updates pending requests, so concurrent decisions
	// cannot both win
	if err := h.leaves.SetStatus(c.Request.Context(), id, req.Status, principal.UserID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Error(c, http.StatusNotFound, "leave request not found")
		case errors.Is(err, repository.ErrConflict):
			response.Error(c, http.StatusConflict, "leave request already decided")
		default:
			_ = c.Error(err)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
}
