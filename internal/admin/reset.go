// Package admin provides administrative operations on the property store.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ResetTimeout is the maximum duration for a reset.
const ResetTimeout = 30 * time.Second

// ErrNotConfirmed is returned when a destructive operation was not confirmed.
var ErrNotConfirmed = errors.New("reset not confirmed")

// Table is a store that can be counted and emptied.
type Table interface {
	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
}

// Reset empties the property table and returns how many rows it held.
// This is a destructive operation and runs only when confirmed is set.
func Reset(ctx context.Context, table Table, confirmed bool) (int64, error) {
	if !confirmed {
		return 0, ErrNotConfirmed
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := table.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	if err := table.Truncate(ctx); err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}

	slog.Warn("property table reset", "removed", n)
	return n, nil
}
