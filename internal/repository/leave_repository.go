package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms-platform/internal/models"
)

// LeaveRepositoryInterface defines database operations for leave requests
type LeaveRepositoryInterface interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error)
	List(ctx context.Context, limit, offset int) ([]models.LeaveRequest, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]models.LeaveRequest, int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID) error
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// LeaveRepository handles database operations for leave requests
type LeaveRepository struct {
	db *gorm.DB
}

// NewLeaveRepository creates a new LeaveRepository
func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new leave request
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

// GetByID retrieves a leave request by ID
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	var leave models.LeaveRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &leave, nil
}

// List retrieves leave requests with pagination
func (r *LeaveRepository) List(ctx context.Context, limit, offset int) ([]models.LeaveRequest, int64, error) {
	var leaves []models.LeaveRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LeaveRequest{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&leaves).Error
	return leaves, total, err
}

// ListByEmployee retrieves leave requests filed by one employee
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID, limit, offset int) ([]models.LeaveRequest, int64, error) {
	var leaves []models.LeaveRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).
		Where("employee_id = ?", employeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&leaves).Error
	return leaves, total, err
}

// SetStatus records an approve/reject decision on a pending leave request.
// The status guard makes concurrent decisions race on the database row:
// exactly one wins, the rest get ErrConflict.
func (r *LeaveRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, decidedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", id, models.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.LeaveRequest{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// OwnerOf resolves the owning employee of a leave request
func (r *LeaveRepository) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var leave models.LeaveRequest
	err := r.db.WithContext(ctx).Select("employee_id").Where("id = ?", id).First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, err
	}
	return leave.EmployeeID, nil
}
