package repository

import (
	"context"

	"gorm.io/gorm"

	"settlement-ingest-backend/internal/models"
)

type FailedBatchRepository struct {
	db *gorm.DB
}

func NewFailedBatchRepository(db *gorm.DB) *FailedBatchRepository {
	return &FailedBatchRepository{db: db}
}

// Record stores one failed batch. It runs outside the rolled-back
// transaction of the batch itself.
func (r *FailedBatchRepository) Record(ctx context.Context, entry *models.FailedBatchLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
