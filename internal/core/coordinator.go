package core

// coordinator.go persists validated records in bounded batches.
//
// Records are split into consecutive slices of at most BatchSize. Each slice
// is written with one upsert-by-key statement. All slices of a run share a
// single transaction: if any slice fails, nothing from the run is committed.

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultBatchSize is the maximum number of records per upsert statement.
const DefaultBatchSize = 1000

// DefaultUniqueKey is the store column records are upserted on.
const DefaultUniqueKey = "id"

// Store opens the transaction that scopes a whole import run.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction on the property store.
type Tx interface {
	// UpsertBatch inserts each record, or overwrites the stored record that
	// shares its uniqueKey, as one statement. It returns the number of rows
	// the statement reports as affected.
	UpsertBatch(ctx context.Context, records []PropertyRecord, uniqueKey string) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Coordinator writes validated records through a Store.
type Coordinator struct {
	store      Store
	batchSize  int
	uniqueKey  string
	diagnostic bool
	logger     *slog.Logger
}

// NewCoordinator creates a coordinator. A non-positive batchSize uses
// DefaultBatchSize.
func NewCoordinator(store Store, batchSize int, logger *slog.Logger) *Coordinator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:     store,
		batchSize: batchSize,
		uniqueKey: DefaultUniqueKey,
		logger:    logger,
	}
}

// Partition splits records into consecutive slices of at most size,
// preserving order. The slices share records' backing array.
func Partition(records []PropertyRecord, size int) [][]PropertyRecord {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if len(records) == 0 {
		return nil
	}

	batches := make([][]PropertyRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end:end])
	}
	return batches
}

// Write upserts records in one transaction. On any error the transaction is
// rolled back and an *ImportError is returned; no partial count is reported.
func (c *Coordinator) Write(ctx context.Context, records []PropertyRecord) (WriteResult, error) {
	batches := Partition(records, c.batchSize)
	if len(batches) == 0 {
		return WriteResult{}, nil
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return WriteResult{}, newImportError(OpBegin, 0, fmt.Errorf("begin transaction: %w", err), c.diagnostic)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Roll back even when ctx is already cancelled.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			c.logger.Error("rollback failed", "error", rbErr)
		}
	}()

	result := WriteResult{BatchSizes: make([]int, 0, len(batches))}

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return WriteResult{}, newImportError(OpUpsert, i+1, err, c.diagnostic)
		}

		affected, err := tx.UpsertBatch(ctx, batch, c.uniqueKey)
		if err != nil {
			c.logger.Error("batch upsert failed",
				"batch", i+1,
				"batches", len(batches),
				"size", len(batch),
				"error", err,
			)
			return WriteResult{}, newImportError(OpUpsert, i+1, err, c.diagnostic)
		}

		result.Affected += int(affected)
		result.BatchSizes = append(result.BatchSizes, len(batch))

		c.logger.Debug("batch upserted",
			"batch", i+1,
			"batches", len(batches),
			"size", len(batch),
			"affected", affected,
		)
	}

	// A failed Commit already ends the transaction.
	err = tx.Commit(ctx)
	committed = true
	if err != nil {
		return WriteResult{}, newImportError(OpCommit, 0, fmt.Errorf("commit: %w", err), c.diagnostic)
	}

	return result, nil
}
