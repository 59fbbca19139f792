package core

// convert.go turns raw CSV cells into the nullable column values of a
// PropertyRecord.
//
// These functions handle the messy reality of hand-edited listing sheets:
//   - Yen symbols, 円 suffixes and thousands separators in rents
//   - ㎡ / m2 suffixes in floor areas
//   - Full-width digits typed with a Japanese IME
//   - Excel formula prefixes (="value")
//
// Blank input always yields an invalid (NULL) value and no error; only
// non-blank input that cannot be read as a number is an error.

import (
	"errors"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var (
	// ErrNotNumber is returned for a non-blank cell that is not a number.
	ErrNotNumber = errors.New("not a number")

	// ErrNotInteger is returned for a number with a fractional part where a
	// whole number is required.
	ErrNotInteger = errors.New("not a whole number")

	// ErrOutOfRange is returned for a number the column cannot hold.
	ErrOutOfRange = errors.New("number out of range")
)

// maxExponent bounds the decimal exponent of a cell in either direction.
// Rescaling a decimal costs time proportional to its exponent, so "1e20000000"
// must be refused before any arithmetic.
const maxExponent = 32

var (
	minRent = decimal.NewFromInt(math.MinInt64)
	maxRent = decimal.NewFromInt(math.MaxInt64)
)

var rentReplacer = strings.NewReplacer(
	"¥", "",
	"￥", "",
	"円", "",
	",", "",
)

var areaReplacer = strings.NewReplacer(
	"㎡", "",
	"m²", "",
	"m2", "",
	"平米", "",
	",", "",
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseRent converts a monthly rent cell to pgtype.Int8.
// "100000", "¥100,000" and "100,000円" all yield 100000. "1.0e5" is accepted;
// "100000.5" is ErrNotInteger. Values outside the int64 range are
// ErrOutOfRange.
func ParseRent(s string) (pgtype.Int8, error) {
	d, ok, err := parseDecimal(s, rentReplacer)
	if err != nil || !ok {
		return pgtype.Int8{Valid: false}, err
	}
	if !d.Equal(d.Truncate(0)) {
		return pgtype.Int8{Valid: false}, ErrNotInteger
	}
	if d.LessThan(minRent) || d.GreaterThan(maxRent) {
		return pgtype.Int8{Valid: false}, ErrOutOfRange
	}
	return pgtype.Int8{Int64: d.IntPart(), Valid: true}, nil
}

// ParseArea converts a floor area cell to pgtype.Float8.
func ParseArea(s string) (pgtype.Float8, error) {
	d, ok, err := parseDecimal(s, areaReplacer)
	if err != nil || !ok {
		return pgtype.Float8{Valid: false}, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}, ErrOutOfRange
	}
	return pgtype.Float8{Float64: f, Valid: true}, nil
}

// parseDecimal normalizes s and parses it. ok is false for blank input.
// Exponents beyond maxExponent are ErrOutOfRange.
func parseDecimal(s string, r *strings.Replacer) (d decimal.Decimal, ok bool, err error) {
	s = width.Narrow.String(CleanCell(s))
	s = strings.TrimSpace(r.Replace(s))
	if s == "" {
		return decimal.Decimal{}, false, nil
	}
	d, err = decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false, ErrNotNumber
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false, ErrOutOfRange
	}
	return d, true, nil
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace (including the ideographic space U+3000)
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// isBlank reports whether a cell carries no value after cleaning.
func isBlank(s string) bool {
	return CleanCell(s) == ""
}
