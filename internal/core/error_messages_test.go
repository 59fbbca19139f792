package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "duplicate id in one statement",
			err:      &ImportError{Op: OpUpsert, Batch: 1, Err: &pgconn.PgError{Code: "21000"}},
			wantCode: "DB001",
		},
		{
			name:     "unique violation",
			err:      fmt.Errorf("upsert: %w", &pgconn.PgError{Code: "23505"}),
			wantCode: "DB002",
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: "23514"},
			wantCode: "DB003",
		},
		{
			name:     "value too long",
			err:      &pgconn.PgError{Code: "22001"},
			wantCode: "DB004",
		},
		{
			name:     "unknown sqlstate falls through to default",
			err:      &pgconn.PgError{Code: "XX000", Message: "internal"},
			wantCode: "ERR000",
		},
		{
			name:     "connection refused",
			err:      errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: "DB005",
		},
		{
			name:     "file too large",
			err:      fmt.Errorf("read upload: %w", ErrFileTooLarge),
			wantCode: "FILE001",
		},
		{
			name:     "malformed csv",
			err:      &ImportError{Op: OpDecode, Err: &csv.ParseError{Line: 3, Err: csv.ErrQuote}},
			wantCode: "FILE002",
		},
		{
			name:     "invalid encoding",
			err:      &ImportError{Op: OpDecode, Err: ErrInvalidEncoding},
			wantCode: "FILE003",
		},
		{
			name:     "no file",
			err:      ErrNoFile,
			wantCode: "FILE004",
		},
		{
			name:     "empty header",
			err:      &ImportError{Op: OpDecode, Err: ErrEmptyHeader},
			wantCode: "FILE005",
		},
		{
			name:     "not a csv",
			err:      ErrUnsupportedFile,
			wantCode: "FILE006",
		},
		{
			name:     "unsupported encoding name",
			err:      errors.New(`unsupported source encoding "klingon": htmlindex: invalid encoding name`),
			wantCode: "FILE007",
		},
		{
			name:     "limiter busy",
			err:      ErrTooManyImports,
			wantCode: "IMP001",
		},
		{
			name:     "cancelled",
			err:      &ImportError{Op: OpUpsert, Batch: 2, Err: context.Canceled},
			wantCode: "IMP002",
		},
		{
			name:     "deadline",
			err:      &ImportError{Op: OpUpsert, Batch: 2, Err: context.DeadlineExceeded},
			wantCode: "IMP003",
		},
		{
			name:     "rate limit",
			err:      errors.New("Rate Limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned an empty message for a non-nil error")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoFile)
	want := "No file was selected (Code: FILE004). Please select a CSV file to import"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"known sentinel", ErrInvalidEncoding, true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
