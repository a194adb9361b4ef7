package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"settlement-ingest-backend/internal/logging"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/normalization"
)

// ChunkProcessor handles one decoded chunk and never fails; problems are
// reflected in the returned counts.
type ChunkProcessor interface {
	Process(ctx context.Context, chunk normalization.Chunk, bank schema.Bank, category schema.Category) normalization.BatchResult
}

// Submission is one accepted upload: a bank, a category and its files.
type Submission struct {
	ID       uuid.UUID
	Bank     schema.Bank
	Category schema.Category
	Files    []File
}

// SubmissionSummary is the cumulative outcome of a submission.
type SubmissionSummary struct {
	Result         normalization.BatchResult
	FilesProcessed int
	FilesFailed    int
}

// Coordinator walks the files of a submission one at a time and feeds every
// decoded chunk to the processor.
type Coordinator struct {
	decoder   *Decoder
	processor ChunkProcessor
	logger    logrus.FieldLogger
}

func NewCoordinator(decoder *Decoder, processor ChunkProcessor, logger logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		decoder:   decoder,
		processor: processor,
		logger:    logging.OrDiscard(logger),
	}
}

// ProcessSubmission runs every file of sub in order. A file that cannot be
// decoded or panics while processing is logged and skipped; it never stops
// the remaining files.
func (c *Coordinator) ProcessSubmission(ctx context.Context, sub Submission) SubmissionSummary {
	log := c.logger.WithFields(logrus.Fields{
		logging.FieldSubmissionID: sub.ID,
		logging.FieldBank:         sub.Bank,
		logging.FieldCategory:     sub.Category,
	})

	var summary SubmissionSummary
	for _, f := range sub.Files {
		flog := log.WithFields(logrus.Fields{
			logging.FieldFileName: f.Name,
			logging.FieldFormat:   f.Format,
		})
		result, err := c.processFile(ctx, sub, f)
		summary.Result = summary.Result.Add(result)
		if err != nil {
			flog.WithError(err).Error("error processing file")
			summary.FilesFailed++
			continue
		}
		summary.FilesProcessed++
		flog.WithFields(logrus.Fields{
			logging.FieldSuccessful: result.Successful,
			logging.FieldFailed:     result.Failed,
		}).Info("file processed")
	}

	log.WithFields(logrus.Fields{
		logging.FieldSuccessful: summary.Result.Successful,
		logging.FieldFailed:     summary.Result.Failed,
		"files_processed":       summary.FilesProcessed,
		"files_failed":          summary.FilesFailed,
	}).Info("submission complete")
	return summary
}

func (c *Coordinator) processFile(ctx context.Context, sub Submission, f File) (result normalization.BatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", f.Name, r)
		}
	}()

	err = c.decoder.Decode(f, func(chunk normalization.Chunk) error {
		chunk.SubmissionID = sub.ID
		result = result.Add(c.processor.Process(ctx, chunk, sub.Bank, sub.Category))
		return nil
	})
	return result, err
}
