// Package ingestion accepts uploaded settlement files, decodes them and runs
// each submission through the normalization pipeline in the background.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"settlement-ingest-backend/internal/cache"
	"settlement-ingest-backend/internal/logging"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/normalization"
)

var (
	ErrNoFiles   = errors.New("at least one file is required")
	ErrEmptyFile = errors.New("empty file")
)

// SubmissionStore tracks submissions through their lifecycle.
type SubmissionStore interface {
	Create(ctx context.Context, s *models.UploadSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UploadSubmission, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCompleted(ctx context.Context, id uuid.UUID, successful, failed, filesFailed int, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}

// Dispatcher hands a submission to background processing.
type Dispatcher interface {
	Publish(ctx context.Context, sub Submission) error
}

type SubmissionRunner interface {
	ProcessSubmission(ctx context.Context, sub Submission) SubmissionSummary
}

type Service struct {
	submissions SubmissionStore
	runner      SubmissionRunner
	dispatcher  Dispatcher
	results     cache.Store[normalization.BatchResult]
	logger      logrus.FieldLogger
	now         func() time.Time
}

func NewService(submissions SubmissionStore, runner SubmissionRunner, results cache.Store[normalization.BatchResult], logger logrus.FieldLogger) *Service {
	return &Service{
		submissions: submissions,
		runner:      runner,
		results:     results,
		logger:      logging.OrDiscard(logger),
		now:         time.Now,
	}
}

// SetDispatcher attaches the queue that Submit publishes to. The queue's
// handler is s.Run, so the two are wired after both exist.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// Submit records a new submission and queues it. Files must be non-empty and
// carry a declared format. A submission that cannot be queued is marked failed.
func (s *Service) Submit(ctx context.Context, bank schema.Bank, category schema.Category, files []File) (*models.UploadSubmission, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if len(f.Content) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
		}
		names = append(names, f.Name)
	}
	if s.dispatcher == nil {
		return nil, errors.New("ingestion service has no dispatcher")
	}

	sub := &models.UploadSubmission{
		ID:              uuid.New(),
		BankName:        string(bank),
		TransactionType: string(category),
		FileNames:       strings.Join(names, ","),
		FileCount:       len(files),
		Status:          models.SubmissionQueued,
		CreatedAt:       s.now(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	err := s.dispatcher.Publish(ctx, Submission{ID: sub.ID, Bank: bank, Category: category, Files: files})
	if err != nil {
		// The request context may be what failed the publish.
		if markErr := s.submissions.MarkFailed(context.WithoutCancel(ctx), sub.ID, err.Error(), s.now()); markErr != nil {
			s.logger.WithField(logging.FieldSubmissionID, sub.ID).WithError(markErr).Error("could not mark submission failed")
		}
		return nil, fmt.Errorf("queue submission: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		logging.FieldSubmissionID: sub.ID,
		logging.FieldBank:         bank,
		logging.FieldCategory:     category,
		logging.FieldCount:        len(files),
	}).Info("submission queued")
	return sub, nil
}

// Run processes one queued submission. It is the queue handler.
func (s *Service) Run(ctx context.Context, sub Submission) error {
	log := s.logger.WithField(logging.FieldSubmissionID, sub.ID)

	if err := s.submissions.MarkProcessing(ctx, sub.ID, s.now()); err != nil {
		log.WithError(err).Warn("could not mark submission processing")
	}

	summary := s.runner.ProcessSubmission(ctx, sub)

	err := s.submissions.MarkCompleted(ctx, sub.ID,
		summary.Result.Successful, summary.Result.Failed, summary.FilesFailed, s.now())
	if err != nil {
		return fmt.Errorf("mark submission %s completed: %w", sub.ID, err)
	}
	return nil
}

// GetSubmission returns a tracked submission.
func (s *Service) GetSubmission(ctx context.Context, id uuid.UUID) (*models.UploadSubmission, error) {
	return s.submissions.GetByID(ctx, id)
}

// LatestResult returns the published result, or zero counts when none is
// live.
func (s *Service) LatestResult() normalization.BatchResult {
	result, _ := s.results.Get(normalization.LatestResultsKey)
	return result
}
