package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionQueued     = "queued"
	SubmissionProcessing = "processing"
	SubmissionCompleted  = "completed"
	// SubmissionFailed marks a submission that never reached a worker.
	SubmissionFailed = "failed"
)

// UploadSubmission tracks one accepted upload through background processing.
type UploadSubmission struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BankName        string     `gorm:"index" json:"bank_name"`
	TransactionType string     `json:"transaction_type"`
	FileNames       string     `json:"file_names"`
	FileCount       int        `json:"file_count"`
	FilesFailed     int        `json:"files_failed"`
	SuccessfulCount int        `json:"total_successful"`
	FailedCount     int        `json:"total_failed"`
	Status          string     `gorm:"index" json:"status"`
	Error           *string    `json:"error,omitempty"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
