package core

// importer.go runs one import end to end:
//
//	Decoder -> Validator -> { valid: records, invalid: ErrorAggregator }
//	        -> Coordinator -> BuildSummary
//
// Decoding and validation finish before anything is written, so a decode
// failure never opens a transaction. The run is a single sequential pass;
// record order and error order both follow source order.

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/propimport/internal/i18n"
	"github.com/JonMunkholm/propimport/internal/logging"
)

// ctxCheckInterval is how many rows are decoded between context checks.
const ctxCheckInterval = 100

// progressLogInterval is how many rows are decoded between progress lines.
const progressLogInterval = 10000

// Options configures an Importer. Zero values select the defaults.
type Options struct {
	BatchSize          int    // records per upsert statement (default 1000)
	MaxDisplayedErrors int    // failures shown in the result (default 20)
	Encoding           string // source character set, "" for UTF-8
	StrictHouseRoom    bool   // reject house rows that carry a room number
	Diagnostic         bool   // attach cause traces to fatal errors
}

// Importer wires the pipeline stages together. It is safe for concurrent
// use; every Run builds its own decoder, aggregator and transaction.
type Importer struct {
	store      Store
	categories *CategoryMap
	locale     *i18n.Locale
	opts       Options
	validator  *Validator
}

// NewImporter creates an importer writing to store.
func NewImporter(store Store, categories *CategoryMap, locale *i18n.Locale, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxDisplayedErrors <= 0 {
		opts.MaxDisplayedErrors = DefaultMaxDisplayedErrors
	}

	return &Importer{
		store:      store,
		categories: categories,
		locale:     locale,
		opts:       opts,
		validator:  NewValidator(categories, locale, ValidatorOptions{StrictHouseRoom: opts.StrictHouseRoom}),
	}
}

// Locale returns the locale messages are rendered in.
func (im *Importer) Locale() *i18n.Locale {
	return im.locale
}

// Run imports every row of src. A nil error means the run committed (or had
// nothing to write); row-level failures are reported in the result. Any
// other outcome is an *ImportError and nothing was committed.
func (im *Importer) Run(ctx context.Context, src io.Reader) (*ImportResult, error) {
	return im.RunEncoded(ctx, src, im.opts.Encoding)
}

// RunEncoded is Run with the source character set chosen per call, e.g. from
// an upload form field. An empty name means UTF-8.
func (im *Importer) RunEncoded(ctx context.Context, src io.Reader, encoding string) (*ImportResult, error) {
	start := time.Now()
	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID)

	logger.Info("import started",
		"batch_size", im.opts.BatchSize,
		"encoding", encoding,
	)

	records, aggregator, rows, err := im.decodeAndValidate(ctx, src, encoding)
	if err != nil {
		logger.Error("import failed", "rows", rows, "error", err)
		return nil, err
	}

	coordinator := NewCoordinator(im.store, im.opts.BatchSize, logger)
	coordinator.diagnostic = im.opts.Diagnostic

	written, err := coordinator.Write(ctx, records)
	if err != nil {
		logger.Error("import failed", "rows", rows, "valid", len(records), "error", err)
		return nil, err
	}

	result := BuildSummary(importID, written, aggregator.Report(), time.Since(start), im.locale)

	logger.Info("import completed",
		"rows", rows,
		"updated", result.UpdatedCount,
		"skipped", result.SkippedCount,
		"batches", result.Batches,
		"duration", result.Duration,
	)

	return result, nil
}

// decodeAndValidate reads every row, routing valid records to the returned
// slice and failures to the aggregator, both in source order.
func (im *Importer) decodeAndValidate(ctx context.Context, src io.Reader, encoding string) ([]PropertyRecord, *ErrorAggregator, int, error) {
	aggregator := NewErrorAggregator(im.opts.MaxDisplayedErrors)
	var records []PropertyRecord

	_, rows, err := im.scan(ctx, src, encoding, func(_ Row, rec PropertyRecord, failure *ValidationFailure) {
		if failure != nil {
			aggregator.Add(*failure)
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, nil, rows, err
	}

	return records, aggregator, rows, nil
}

// scan decodes src and validates each row in source order, handing every
// outcome to visit: a record, or a non-nil failure. It returns the header
// and the number of data rows read.
func (im *Importer) scan(ctx context.Context, src io.Reader, encoding string, visit func(Row, PropertyRecord, *ValidationFailure)) ([]string, int, error) {
	decoder, err := NewDecoder(src, encoding)
	if err != nil {
		return nil, 0, newImportError(OpDecode, 0, err, im.opts.Diagnostic)
	}

	rows := 0
	for {
		if rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, rows, newImportError(OpValidate, 0, err, im.opts.Diagnostic)
			}
		}

		row, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rows, newImportError(OpDecode, 0, err, im.opts.Diagnostic)
		}
		rows++
		if rows%progressLogInterval == 0 {
			logging.FromContext(ctx).Debug("decode progress",
				"rows", rows,
				"bytes", decoder.BytesRead(),
				"percent", decoder.Progress(),
			)
		}

		rec, failure := im.validator.Validate(row)
		visit(row, rec, failure)
	}

	return decoder.Header(), rows, nil
}
