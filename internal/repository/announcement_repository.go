package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hrms-platform/internal/models"
)

// AnnouncementRepositoryInterface defines database operations for announcements
type AnnouncementRepositoryInterface interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	List(ctx context.Context, limit, offset int) ([]models.Announcement, int64, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts a new announcement
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

// GetByID retrieves an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	var announcement models.Announcement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&announcement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// List retrieves announcements with pagination, newest first
func (r *AnnouncementRepository) List(ctx context.Context, limit, offset int) ([]models.Announcement, int64, error) {
	var announcements []models.Announcement
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Announcement{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&announcements).Error
	return announcements, total, err
}

// Update saves changes to an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
