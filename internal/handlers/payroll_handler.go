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

// PayrollHandler handles HTTP requests for payslips
type PayrollHandler struct {
	payslips repository.PayrollRepositoryInterface
	logger   *logrus.Entry
}

// NewPayrollHandler creates a new PayrollHandler
func NewPayrollHandler(payslips repository.PayrollRepositoryInterface, logger *logrus.Logger) *PayrollHandler {
	return &PayrollHandler{
		payslips: payslips,
		logger:   logger.WithField("component", "payroll_handler"),
	}
}

// PayslipRequest is the payload for issuing a payslip
type PayslipRequest struct {
	EmployeeID uuid.UUID `json:"employeeId" binding:"required"`
	Period     string    `json:"period" binding:"required"`
	GrossPay   float64   `json:"grossPay" binding:"required,gt=0"`
	NetPay     float64   `json:"netPay" binding:"required,gt=0"`
}

// Create issues a payslip for an employee
func (h *PayrollHandler) Create(c *gin.Context) {
	var req PayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payslip payload")
		return
	}
	if _, err := time.Parse("2006-01", req.Period); err != nil {
		response.Error(c, http.StatusBadRequest, "period must be YYYY-MM")
		return
	}
	if req.NetPay > req.GrossPay {
		response.Error(c, http.StatusBadRequest, "net pay exceeds gross pay")
		return
	}

	payslip := &models.Payslip{
		EmployeeID: req.EmployeeID,
		Period:     req.Period,
		GrossPay:   req.GrossPay,
		NetPay:     req.NetPay,
		IssuedAt:   time.Now().UTC(),
	}
	if err := h.payslips.Create(c.Request.Context(), payslip); err != nil {
		_ = c.Error(err)
		return
	}
	middleware.SetAuditEntityID(c, payslip.ID.String())
	response.Success(c, http.StatusCreated, payslip)
}

// Get retrieves a single payslip. Ownership is enforced by the route
// middleware before this handler runs.
func (h *PayrollHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payslip id")
		return
	}

	payslip, err := h.payslips.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "payslip not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, payslip)
}

// ListMine retrieves the authenticated employee's own payslips
func (h *PayrollHandler) ListMine(c *gin.Context) {
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
	payslips, total, err := h.payslips.ListByEmployee(c.Request.Context(), *principal.EmployeeID, pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, payslips, len(payslips), total, page, pageSize)
}

// List retrieves all payslips, paginated
func (h *PayrollHandler) List(c *gin.Context) {
	page, pageSize, offset := response.Pagination(c)

	payslips, total, err := h.payslips.List(c.Request.Context(), pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, payslips, len(payslips), total, page, pageSize)
}
