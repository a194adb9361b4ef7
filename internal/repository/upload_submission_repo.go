package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"settlement-ingest-backend/internal/models"
)

type UploadSubmissionRepository struct {
	db *gorm.DB
}

func NewUploadSubmissionRepository(db *gorm.DB) *UploadSubmissionRepository {
	return &UploadSubmissionRepository{db: db}
}

func (r *UploadSubmissionRepository) Create(ctx context.Context, s *models.UploadSubmission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// GetByID fetches a single submission.
func (r *UploadSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadSubmission, error) {
	var s models.UploadSubmission
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkProcessing flags the submission as picked up by a worker.
func (r *UploadSubmissionRepository) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.UploadSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.SubmissionProcessing,
			"started_at": at,
		}).Error
}

// MarkFailed closes a submission that could not be processed.
func (r *UploadSubmissionRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.UploadSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.SubmissionFailed,
			"error":        reason,
			"completed_at": at,
		}).Error
}

// MarkCompleted stores the final counters of a submission.
func (r *UploadSubmissionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, successful, failed, filesFailed int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.UploadSubmission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           models.SubmissionCompleted,
			"successful_count": successful,
			"failed_count":     failed,
			"files_failed":     filesFailed,
			"completed_at":     at,
		}).Error
}
