package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"settlement-ingest-backend/internal/models"
)

const defaultInsertBatchSize = 1000

type SettlementTransactionRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewSettlementTransactionRepository(db *gorm.DB, batchSize int) *SettlementTransactionRepository {
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}
	return &SettlementTransactionRepository{db: db, batchSize: batchSize}
}

// BulkInsert stores records in one transaction: all of them commit or none
// do. Records whose id already exists are skipped, so re-submitting the same
// file is a no-op.
func (r *SettlementTransactionRepository) BulkInsert(ctx context.Context, records []*models.SettlementTransaction) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(records, r.batchSize).Error
	})
}
