package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms-platform/internal/models"
)

// PayrollRepositoryInterface defines database operations for payslips
type PayrollRepositoryInterface interface {
	Create(ctx context.Context, payslip *models.Payslip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payslip, error)
	List(ctx context.Context, limit, offset int) ([]models.Payslip, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]models.Payslip, int64, error)
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// PayrollRepository handles database operations for payslips
type PayrollRepository struct {
	db *gorm.DB
}

// NewPayrollRepository creates a new PayrollRepository
func NewPayrollRepository(db *gorm.DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

// Create inserts a new payslip
func (r *PayrollRepository) Create(ctx context.Context, payslip *models.Payslip) error {
	return r.db.WithContext(ctx).Create(payslip).Error
}

// GetByID retrieves a payslip by ID
func (r *PayrollRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payslip, error) {
	var payslip models.Payslip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payslip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payslip, nil
}

// List retrieves payslips with pagination
func (r *PayrollRepository) List(ctx context.Context, limit, offset int) ([]models.Payslip, int64, error) {
	var payslips []models.Payslip
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payslip{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("issued_at DESC").Limit(limit).Offset(offset).Find(&payslips).Error
	return payslips, total, err
}

// ListByEmployee retrieves payslips issued to one employee
func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]models.Payslip, int64, error) {
	var payslips []models.Payslip
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payslip{}).
		Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("issued_at DESC").Limit(limit).Offset(offset).Find(&payslips).Error
	return payslips, total, err
}

// OwnerOf resolves the owning employee of a payslip
func (r *PayrollRepository) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var payslip models.Payslip
	err := r.db.WithContext(ctx).Select("employee_id").Where("id = ?", id).First(&payslip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return payslip.EmployeeID, nil
}
