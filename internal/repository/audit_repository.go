package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms-platform/internal/models"
)

// AuditFilter narrows the audit log listing. Zero values mean "no filter".
type AuditFilter struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
}

// AuditRepositoryInterface defines database operations for the audit ledger.
// The ledger is append-only: there are no update or delete operations.
type AuditRepositoryInterface interface {
	Create(ctx context.Context, record *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error)
}

// AuditRepository handles database operations for audit records
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends a new audit record
func (r *AuditRepository) Create(ctx context.Context, record *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List retrieves audit records matching the filter, newest first
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter, limit, offset int) ([]models.AuditLog, int64, error) {
	var records []models.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}
