package core

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/propimport/internal/i18n"
)

// BuildSummary combines the write count and the error report into the
// result of one run. It has no side effects.
func BuildSummary(importID string, written WriteResult, report ErrorReport, elapsed time.Duration, locale *i18n.Locale) *ImportResult {
	displayed := report.Displayed
	if displayed == nil {
		displayed = []string{}
	}

	result := &ImportResult{
		ImportID:        importID,
		UpdatedCount:    written.Affected,
		SkippedCount:    report.Total,
		DisplayedErrors: displayed,
		OverflowCount:   report.Overflow,
		Batches:         len(written.BatchSizes),
		Duration:        elapsed,
	}

	// Counts go in as strings so the printer does not add digit grouping.
	result.Notice = locale.Sprintf(i18n.KeyNotice,
		strconv.Itoa(result.UpdatedCount), strconv.Itoa(result.SkippedCount))

	if report.Overflow > 0 {
		result.OverflowMessage = locale.Sprintf(i18n.KeyOverflow, strconv.Itoa(report.Overflow))
	}

	return result
}
