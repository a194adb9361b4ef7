package normalization

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"settlement-ingest-backend/internal/cache"
	"settlement-ingest-backend/internal/logging"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
)

const defaultResultTTL = time.Hour

// BatchStore commits a chunk's records atomically.
type BatchStore interface {
	BulkInsert(ctx context.Context, records []*models.SettlementTransaction) error
}

// FailedBatchRecorder keeps the content of batches whose commit failed.
type FailedBatchRecorder interface {
	Record(ctx context.Context, entry *models.FailedBatchLog) error
}

type Option func(*Processor)

// WithResultTTL sets how long a published result stays readable.
func WithResultTTL(ttl time.Duration) Option {
	return func(p *Processor) { p.resultTTL = ttl }
}

// WithFailedBatchRecorder persists failed batches in addition to logging them.
func WithFailedBatchRecorder(r FailedBatchRecorder) Option {
	return func(p *Processor) { p.failures = r }
}

// WithProjector replaces the default projector.
func WithProjector(pr *Projector) Option {
	return func(p *Processor) { p.projector = pr }
}

// Processor validates, projects and commits one chunk at a time. It keeps no
// state between chunks.
type Processor struct {
	registry  *schema.Registry
	projector *Projector
	store     BatchStore
	results   cache.Store[BatchResult]
	resultTTL time.Duration
	failures  FailedBatchRecorder
	logger    logrus.FieldLogger
}

func NewProcessor(registry *schema.Registry, store BatchStore, results cache.Store[BatchResult], logger logrus.FieldLogger, opts ...Option) *Processor {
	p := &Processor{
		registry:  registry,
		projector: NewProjector(nil),
		store:     store,
		results:   results,
		resultTTL: defaultResultTTL,
		logger:    logging.OrDiscard(logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process normalizes, projects and stores one chunk. A chunk that cannot be
// mapped is skipped with a zero result and nothing is published. Otherwise
// the result is published to the result slot, including when the commit
// failed and every row is counted as failed.
func (p *Processor) Process(ctx context.Context, chunk Chunk, bank schema.Bank, category schema.Category) BatchResult {
	log := p.logger.WithFields(logrus.Fields{
		logging.FieldBank:     bank,
		logging.FieldCategory: category,
		logging.FieldFileName: chunk.FileName,
		logging.FieldChunk:    chunk.Index,
	})
	log.WithField(logging.FieldRows, len(chunk.Rows)).Info("processing chunk")

	headers, rows := normalizeChunk(chunk)
	log.WithField(logging.FieldHeaders, headers).Debug("cleaned columns")

	entry, err := p.registry.Resolve(bank, category)
	if err != nil {
		log.WithError(err).Error("no valid mapping found")
		return BatchResult{}
	}

	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	if missing := entry.MissingHeaders(present); len(missing) > 0 {
		err := &schema.MissingHeadersError{Bank: bank, Category: category, Missing: missing}
		log.WithField(logging.FieldMissingHeaders, missing).WithError(err).Error("chunk rejected")
		return BatchResult{}
	}

	if _, ok := schema.BankCode(bank); !ok {
		log.WithError(fmt.Errorf("%w for bank %s", schema.ErrUnknownBankCode, bank)).Error("chunk rejected")
		return BatchResult{}
	}

	var (
		result          BatchResult
		records         = make([]*models.SettlementTransaction, 0, len(rows))
		seen            = make(map[uuid.UUID]struct{}, len(rows))
		duplicates      []int
		unparsedDates   = map[string][]int{}
		unparsedAmounts = map[string][]int{}
	)
	for i, row := range rows {
		proj, err := p.projector.Project(rename(row, entry.FieldMapping), bank, category, entry.SignedAmounts)
		if err != nil {
			log.WithField(logging.FieldRow, i).WithError(err).Error("skipping row")
			result.Failed++
			continue
		}
		// A repeated line maps to the same id and would be stored once, so
		// it is neither a success nor a failure.
		if _, ok := seen[proj.Record.ID]; ok {
			duplicates = append(duplicates, i)
			continue
		}
		seen[proj.Record.ID] = struct{}{}
		for _, f := range proj.UnparsedDates {
			unparsedDates[f] = append(unparsedDates[f], i)
		}
		for _, f := range proj.UnparsedAmounts {
			unparsedAmounts[f] = append(unparsedAmounts[f], i)
		}
		records = append(records, proj.Record)
		result.Successful++
	}
	if len(duplicates) > 0 {
		log.WithField(logging.FieldRows, duplicates).Warn("skipping duplicate rows")
	}
	logUnparsed(log, "could not parse dates", unparsedDates)
	logUnparsed(log, "could not parse amounts", unparsedAmounts)

	if len(records) > 0 {
		log.WithField(logging.FieldCount, len(records)).Debug("bulk inserting transactions")
		if err := p.store.BulkInsert(ctx, records); err != nil {
			p.commitFailed(ctx, log, chunk, bank, category, records, err)
			result = BatchResult{Failed: result.Successful + result.Failed}
		} else {
			log.WithField(logging.FieldCount, len(records)).Info("processed transactions successfully")
		}
	}

	log.WithFields(logrus.Fields{
		logging.FieldSuccessful: result.Successful,
		logging.FieldFailed:     result.Failed,
	}).Info("batch processing complete")

	p.results.Set(LatestResultsKey, result, p.resultTTL)
	return result
}

func (p *Processor) commitFailed(ctx context.Context, log logrus.FieldLogger, chunk Chunk, bank schema.Bank, category schema.Category, records []*models.SettlementTransaction, cause error) {
	payload, err := json.Marshal(records)
	if err != nil {
		payload = []byte(fmt.Sprintf("%q", err.Error()))
	}
	log.WithError(cause).WithField("batch", string(payload)).Error("transaction failed")

	if p.failures == nil {
		return
	}
	entry := &models.FailedBatchLog{
		ID:              uuid.New(),
		BankName:        string(bank),
		TransactionType: string(category),
		FileName:        chunk.FileName,
		ChunkIndex:      chunk.Index,
		RecordCount:     len(records),
		Error:           cause.Error(),
		Payload:         payload,
	}
	if chunk.SubmissionID != uuid.Nil {
		id := chunk.SubmissionID
		entry.SubmissionID = &id
	}
	if err := p.failures.Record(ctx, entry); err != nil {
		log.WithError(err).Warn("could not record failed batch")
	}
}

// normalizeChunk re-keys every row by normalized header. When two raw headers
// collapse to the same key, the later column wins. Cells under a key that is
// not in Headers are dropped.
func normalizeChunk(chunk Chunk) ([]string, []Row) {
	keyOf := make(map[string]string, len(chunk.Headers))
	headers := make([]string, 0, len(chunk.Headers))
	for _, raw := range chunk.Headers {
		key := schema.NormalizeHeader(raw)
		keyOf[raw] = key
		headers = append(headers, key)
	}

	rows := make([]Row, len(chunk.Rows))
	for i, row := range chunk.Rows {
		out := make(Row, len(row))
		for _, raw := range chunk.Headers {
			if v, ok := row[raw]; ok {
				out[keyOf[raw]] = v
			}
		}
		rows[i] = out
	}
	return headers, rows
}

// rename maps normalized headers to canonical fields, dropping the rest.
func rename(row Row, mapping map[string]string) Row {
	out := make(Row, len(mapping))
	for key, v := range row {
		if field, ok := mapping[key]; ok {
			out[field] = v
		}
	}
	return out
}

func logUnparsed(log logrus.FieldLogger, msg string, byField map[string][]int) {
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		log.WithFields(logrus.Fields{
			logging.FieldField: f,
			logging.FieldRows:  byField[f],
		}).Warn(msg)
	}
}
