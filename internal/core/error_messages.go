package core

// error_messages.go maps fatal import errors to user-facing messages with a
// support code.
//
// Codes are grouped by category:
//
//	DB001-DB099     store errors (constraints, connectivity)
//	FILE001-FILE099 source file errors (size, format, encoding)
//	IMP001-IMP099   import run errors (busy, cancelled, timed out)
//	RATE001         request throttling
//	ERR000          fallback, check the logs for the technical error
//
// Matching order: PostgreSQL SQLSTATE codes first, then sentinel errors via
// errors.Is, then case-insensitive substrings of the error text. The first
// match wins, so specific entries come before general ones.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoFile is returned when a request carries no CSV file.
	ErrNoFile = errors.New("no file provided")

	// ErrUnsupportedFile is returned when an upload is not a CSV file.
	ErrUnsupportedFile = errors.New("unsupported file type, expected csv")

	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

// sqlStateMessages maps PostgreSQL error codes to user messages.
var sqlStateMessages = map[string]UserMessage{
	// cardinality_violation: ON CONFLICT hit the same key twice in one statement
	"21000": {
		Message: "The file contains the same ID more than once",
		Action:  "Remove duplicate IDs from the CSV and import again",
		Code:    "DB001",
	},
	"23505": {
		Message: "A duplicate value was found",
		Action:  "Review the file for duplicate key values",
		Code:    "DB002",
	},
	"23502": {
		Message: "A required value is missing in the store",
		Action:  "Check that every required column has a value",
		Code:    "DB003",
	},
	"23514": {
		Message: "A value was rejected by a store constraint",
		Action:  "Check the building type and numeric columns",
		Code:    "DB003",
	},
	"22001": {
		Message: "A value is too long for its column",
		Action:  "Shorten the name, address or room number",
		Code:    "DB004",
	},
	"22003": {
		Message: "A number is out of range",
		Action:  "Check the rent and area columns",
		Code:    "DB004",
	},
	"40P01": {
		Message: "The store was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	},
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{ErrInvalidEncoding, UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file as UTF-8, or set the source encoding",
		Code:    "FILE003",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to import",
		Code:    "FILE004",
	}},
	{ErrEmptyHeader, UserMessage{
		Message: "The header row is empty",
		Action:  "Use the CSV template header as the first line",
		Code:    "FILE005",
	}},
	{ErrUnsupportedFile, UserMessage{
		Message: "Only CSV files can be imported",
		Action:  "Export the sheet as CSV and try again",
		Code:    "FILE006",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{context.Canceled, UserMessage{
		Message: "Import was cancelled",
		Action:  "Please try again",
		Code:    "IMP002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Import timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "IMP003",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors that carry no type, such as driver dial errors.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{
		Message: "Unable to connect to the store",
		Action:  "Please try again in a few moments",
		Code:    "DB005",
	}},
	{"connection reset", UserMessage{
		Message: "Store connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},
	{"unsupported source encoding", UserMessage{
		Message: "The source encoding is not supported",
		Action:  "Use utf-8 or shift_jis",
		Code:    "FILE007",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var invalidCSVMessage = UserMessage{
	Message: "File is not a valid CSV",
	Action:  "Check quoting and make sure the file is comma-separated",
	Code:    "FILE002",
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It never
// returns an empty message for a non-nil error; unknown errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return invalidCSVMessage
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
