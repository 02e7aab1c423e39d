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

// EmployeeHandler handles HTTP requests for employee records
type EmployeeHandler struct {
	employees repository.EmployeeRepositoryInterface
	logger    *logrus.Entry
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employees repository.EmployeeRepositoryInterface, logger *logrus.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		logger:    logger.WithField("component", "employee_handler"),
	}
}

// EmployeeRequest is the payload for creating or updating an employee
type EmployeeRequest struct {
	FirstName  string     `json:"firstName" binding:"required"`
	LastName   string     `json:"lastName" binding:"required"`
	Email      string     `json:"email" binding:"required,email"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	HireDate   *time.Time `json:"hireDate"`
}

// Create inserts a new employee record
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid employee payload")
		return
	}

	employee := &models.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
		HireDate:   req.HireDate,
	}
	if err := h.employees.Create(c.Request.Context(), employee); err != nil {
		h.logger.WithError(err).Error("failed to create employee")
		response.Error(c, http.StatusConflict, "employee could not be created")
		return
	}
	middleware.SetAuditEntityID(c, employee.ID.String())
	response.Success(c, http.StatusCreated, employee)
}

// Get retrieves a single employee
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid employee id")
		return
	}

	employee, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "employee not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, employee)
}

// List retrieves employees, paginated
func (h *EmployeeHandler) List(c *gin.Context) {
	page, pageSize, offset := response.Pagination(c)

	employees, total, err := h.employees.List(c.Request.Context(), pageSize, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.List(c, employees, len(employees), total, page, pageSize)
}

// Update replaces an employee's mutable fields
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid employee id")
		return
	}

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid employee payload")
		return
	}

	employee, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "employee not found")
			return
		}
		_ = c.Error(err)
		return
	}

	employee.FirstName = req.FirstName
	employee.LastName = req.LastName
	employee.Email = req.Email
	employee.Department = req.Department
	employee.Position = req.Position
	employee.HireDate = req.HireDate

	if err := h.employees.Update(c.Request.Context(), employee); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, employee)
}

// Delete removes an employee record
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid employee id")
		return
	}

	if err := h.employees.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "employee not found")
			return
		}
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
