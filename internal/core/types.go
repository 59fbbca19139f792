package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// BuildingCategory is the stored integer code of a building type.
type BuildingCategory int16

const (
	CategoryApartment BuildingCategory = 0
	CategoryHouse     BuildingCategory = 1
	CategoryMansion   BuildingCategory = 2
)

func (c BuildingCategory) String() string {
	switch c {
	case CategoryApartment:
		return "apartment"
	case CategoryHouse:
		return "house"
	case CategoryMansion:
		return "mansion"
	default:
		return fmt.Sprintf("BuildingCategory(%d)", int16(c))
	}
}

// Row is one decoded data row keyed by header name.
type Row struct {
	Line   int // 1-indexed source line of the row
	Fields map[string]string
}

// Get returns the cleaned value of the named column, or "" if the column is
// absent. Use it for key, code and numeric columns.
func (r Row) Get(name string) string {
	return CleanCell(r.Fields[name])
}

// Text returns the named column with only surrounding whitespace removed.
// Quotes and apostrophes in free text such as names are kept.
func (r Row) Text(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// PropertyRecord is a validated, normalized listing ready for upsert.
// Optional columns use pgtype values so absent cells are stored as NULL.
type PropertyRecord struct {
	ID         string // external unique identifier, the upsert key
	Name       string
	Address    pgtype.Text
	RoomNumber pgtype.Text // always invalid (NULL) for houses
	Rent       pgtype.Int8
	Area       pgtype.Float8
	Category   BuildingCategory
}

// ValidationFailure describes every rule a single row violated.
type ValidationFailure struct {
	Line     int
	RowID    string   // the intended key as found in the source, possibly blank
	Messages []string // individual rule messages, in rule order
	Message  string   // display form, row label plus all rule messages
}

func (f ValidationFailure) Error() string {
	return f.Message
}

// ErrorReport is the display-ready view of accumulated validation failures.
type ErrorReport struct {
	Displayed []string // earliest failure messages, at most the display cap
	Total     int      // every failure recorded
	Overflow  int      // failures not displayed (Total - len(Displayed))
}

// WriteResult is what the coordinator reports after a committed run.
type WriteResult struct {
	Affected   int   // sum of affected counts reported by each batch upsert
	BatchSizes []int // record count of each batch, in write order
}

// ImportResult is the single summary returned for a completed import.
type ImportResult struct {
	ImportID        string        `json:"importId"`
	UpdatedCount    int           `json:"updatedCount"`
	SkippedCount    int           `json:"skippedCount"`
	DisplayedErrors []string      `json:"displayedErrors"`
	OverflowCount   int           `json:"overflowCount"`
	OverflowMessage string        `json:"overflowMessage,omitempty"` // set iff OverflowCount > 0
	Notice          string        `json:"notice"`
	Batches         int           `json:"batches"`
	Duration        time.Duration `json:"duration"`
}

// HasOverflow reports whether some validation failures were not displayed.
func (r ImportResult) HasOverflow() bool {
	return r.OverflowCount > 0
}

// String renders the result the way the CLI prints it.
func (r ImportResult) String() string {
	var b strings.Builder
	b.WriteString(r.Notice)
	for _, msg := range r.DisplayedErrors {
		b.WriteString("\n  ")
		b.WriteString(msg)
	}
	if r.OverflowMessage != "" {
		b.WriteString("\n")
		b.WriteString(r.OverflowMessage)
	}
	return b.String()
}
