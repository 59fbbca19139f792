package core

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/JonMunkholm/propimport/internal/i18n"
)

// Op names the pipeline stage a fatal error came from.
type Op string

const (
	OpDecode   Op = "decode"
	OpValidate Op = "validate"
	OpBegin    Op = "begin"
	OpUpsert   Op = "upsert"
	OpCommit   Op = "commit"
)

var (
	// ErrInvalidEncoding is returned when the source is not valid text in
	// the configured encoding.
	ErrInvalidEncoding = errors.New("encoding error: source is not valid text")

	// ErrEmptyHeader is returned when the first row has no column names.
	ErrEmptyHeader = errors.New("header row has no column names")

	// ErrNotRewindable is returned by Decoder.Rewind for non-seekable sources.
	ErrNotRewindable = errors.New("decoder source is not seekable")
)

// ImportError is a fatal, run-level failure. It is never a per-row
// validation failure and always means nothing was committed.
type ImportError struct {
	Op    Op
	Batch int // 1-indexed batch number for OpUpsert, else 0
	Err   error
	Trace string // cause chain and stack, only populated in diagnostic mode
}

func (e *ImportError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("import %s (batch %d): %v", e.Op, e.Batch, e.Err)
	}
	return fmt.Sprintf("import %s: %v", e.Op, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Operation returns the label used in user-facing messages, e.g.
// "PropertyImport#upsert".
func (e *ImportError) Operation() string {
	return "PropertyImport#" + string(e.Op)
}

// newImportError wraps err as a fatal error for op. With diagnostic set the
// cause chain and the current goroutine stack are captured.
func newImportError(op Op, batch int, err error, diagnostic bool) *ImportError {
	ie := &ImportError{Op: op, Batch: batch, Err: err}
	if diagnostic {
		ie.Trace = causeTrace(err) + "\n" + string(debug.Stack())
	}
	return ie
}

// causeTrace lists err and every error it wraps, one per line.
func causeTrace(err error) string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("%T: %v", e, e))
	}
	return strings.Join(lines, "\n")
}

// FatalMessage renders a fatal error for the user: the failed operation and
// the underlying cause. The trace is appended only when diagnostic is set.
func FatalMessage(err error, locale *i18n.Locale, diagnostic bool) string {
	if err == nil {
		return ""
	}

	var ie *ImportError
	if !errors.As(err, &ie) {
		return locale.Sprintf(i18n.KeyFatal, "PropertyImport", err.Error())
	}

	msg := locale.Sprintf(i18n.KeyFatal, ie.Operation(), ie.Err.Error())
	if diagnostic && ie.Trace != "" {
		msg += "\n" + ie.Trace
	}
	return msg
}
