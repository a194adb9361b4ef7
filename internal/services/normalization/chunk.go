// Package normalization turns decoded bank export chunks into canonical
// settlement records and commits them chunk by chunk.
package normalization

import "github.com/google/uuid"

// LatestResultsKey is the result-slot key read by the results view.
const LatestResultsKey = "latest_transaction_results"

// Row maps a header to its cell. A nil cell is null.
type Row map[string]*string

// Chunk is a bounded slice of one decoded file. All chunks of a file share
// Headers.
type Chunk struct {
	SubmissionID uuid.UUID
	FileName     string
	Index        int
	Headers      []string
	Rows         []Row
}

// BatchResult summarizes the outcome of one chunk or submission.
type BatchResult struct {
	Successful int `json:"total_successful"`
	Failed     int `json:"total_failed"`
}

// Add returns the element-wise sum of r and o.
func (r BatchResult) Add(o BatchResult) BatchResult {
	return BatchResult{Successful: r.Successful + o.Successful, Failed: r.Failed + o.Failed}
}
