package core

import (
	"context"
	"io"
	"time"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows        int `json:"totalRows"`
	ValidRows        int `json:"validRows"`
	ErrorRows        int `json:"errorRows"`
	DuplicateInBatch int `json:"duplicateInBatch"`
}

// RowPreview is a valid row as it was read from the file.
type RowPreview struct {
	LineNumber int               `json:"lineNumber"`
	RowKey     string            `json:"rowKey"`
	Values     map[string]string `json:"values"`
}

// ErrorPreview is a row that would be skipped.
type ErrorPreview struct {
	LineNumber int      `json:"lineNumber"`
	RowKey     string   `json:"rowKey,omitempty"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// DuplicatePreview is a key that more than one valid row of the same write
// batch carries. Such a file cannot be written: the upsert rejects a
// statement that touches the same row twice. Repeats in different batches
// are applied in file order and are not reported.
type DuplicatePreview struct {
	RowKey      string `json:"rowKey"`
	Batch       int    `json:"batch"`
	LineNumbers []int  `json:"lineNumbers"`
}

// PreviewResponse is the complete result of a dry run.
type PreviewResponse struct {
	Header           []string           `json:"header"`
	Summary          PreviewSummary     `json:"summary"`
	RowSamples       []RowPreview       `json:"rowSamples"`
	ErrorSamples     []ErrorPreview     `json:"errorSamples"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// HasDuplicates reports whether a write batch repeats a key, which would
// make the real run fail.
func (p *PreviewResponse) HasDuplicates() bool {
	return p.Summary.DuplicateInBatch > 0
}

// Sample limits
const (
	maxRowSamples       = 10
	maxDuplicateSamples = 10
)

// Preview decodes and validates src exactly like Run but writes nothing.
// Error samples follow the importer's display cap.
func (im *Importer) Preview(ctx context.Context, src io.Reader, encoding string) (*PreviewResponse, error) {
	start := time.Now()

	resp := &PreviewResponse{
		RowSamples:       []RowPreview{},
		ErrorSamples:     []ErrorPreview{},
		DuplicateSamples: []DuplicatePreview{},
	}

	// Valid records are partitioned exactly as Write partitions them.
	type batchKey struct {
		batch int
		id    string
	}
	seen := make(map[batchKey][]int)
	var order []batchKey

	header, rows, err := im.scan(ctx, src, encoding, func(row Row, rec PropertyRecord, failure *ValidationFailure) {
		if failure != nil {
			resp.Summary.ErrorRows++
			if len(resp.ErrorSamples) < im.opts.MaxDisplayedErrors {
				resp.ErrorSamples = append(resp.ErrorSamples, ErrorPreview{
					LineNumber: failure.Line,
					RowKey:     failure.RowID,
					Message:    failure.Message,
					Errors:     failure.Messages,
				})
			}
			return
		}

		key := batchKey{batch: resp.Summary.ValidRows/im.opts.BatchSize + 1, id: rec.ID}
		resp.Summary.ValidRows++
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], row.Line)

		if len(resp.RowSamples) < maxRowSamples {
			resp.RowSamples = append(resp.RowSamples, RowPreview{
				LineNumber: row.Line,
				RowKey:     rec.ID,
				Values:     row.Fields,
			})
		}
	})
	if err != nil {
		return nil, err
	}

	for _, key := range order {
		lines := seen[key]
		if len(lines) < 2 {
			continue
		}
		resp.Summary.DuplicateInBatch += len(lines) - 1
		if len(resp.DuplicateSamples) < maxDuplicateSamples {
			resp.DuplicateSamples = append(resp.DuplicateSamples, DuplicatePreview{
				RowKey:      key.id,
				Batch:       key.batch,
				LineNumbers: lines,
			})
		}
	}

	resp.Header = header
	resp.Summary.TotalRows = rows
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}
