package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FailedBatchLog keeps the content of a chunk whose commit was rolled back,
// for operator diagnosis.
type FailedBatchLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SubmissionID    *uuid.UUID `gorm:"type:uuid;index"`
	BankName        string
	TransactionType string
	FileName        string
	ChunkIndex      int
	RecordCount     int
	Error           string
	Payload         datatypes.JSON
	CreatedAt       time.Time
}
