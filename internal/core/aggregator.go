package core

// DefaultMaxDisplayedErrors is how many validation failures a report shows.
const DefaultMaxDisplayedErrors = 20

// ErrorAggregator collects validation failures in arrival order. It keeps
// at most limit messages for display and counts every failure.
type ErrorAggregator struct {
	limit     int
	displayed []string
	total     int
}

// NewErrorAggregator creates an aggregator that displays at most limit
// failures. A non-positive limit uses DefaultMaxDisplayedErrors.
func NewErrorAggregator(limit int) *ErrorAggregator {
	if limit <= 0 {
		limit = DefaultMaxDisplayedErrors
	}
	return &ErrorAggregator{
		limit:     limit,
		displayed: make([]string, 0, limit),
	}
}

// Add records a failure.
func (a *ErrorAggregator) Add(f ValidationFailure) {
	a.total++
	if len(a.displayed) < a.limit {
		a.displayed = append(a.displayed, f.Message)
	}
}

// Total returns the number of failures recorded.
func (a *ErrorAggregator) Total() int {
	return a.total
}

// Report returns the earliest failures up to the display cap and the
// number left out.
func (a *ErrorAggregator) Report() ErrorReport {
	shown := make([]string, len(a.displayed))
	copy(shown, a.displayed)
	return ErrorReport{
		Displayed: shown,
		Total:     a.total,
		Overflow:  a.total - len(shown),
	}
}
