// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Dataset source errors.
var (
	// ErrDatasetNotFound indicates the configured CSV file does not exist.
	ErrDatasetNotFound = errors.New("dataset file not found")

	// ErrDatasetUnreadable indicates the CSV file exists but could not be read.
	ErrDatasetUnreadable = errors.New("dataset file unreadable")
)

// CSV parsing errors.
var (
	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrDuplicateColumn indicates the header names the same column more than once.
	ErrDuplicateColumn = errors.New("duplicate column in header")

	// ErrMalformedRow indicates a row that cannot be tokenized against the header.
	ErrMalformedRow = errors.New("malformed csv row")

	// ErrEmptyHeader indicates the file has no header line.
	ErrEmptyHeader = errors.New("csv header is empty")
)

// Encoding errors.
var (
	// ErrInvalidEncoding indicates the input bytes are not valid in the configured encoding.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrUnsupportedEncoding indicates an encoding name the loader does not know.
	ErrUnsupportedEncoding = errors.New("unsupported text encoding")
)

// Rendering errors.
var (
	// ErrUnknownChart indicates a chart name outside the dashboard's fixed set.
	ErrUnknownChart = errors.New("unknown chart")

	// ErrUnknownFormat indicates an image format the renderer cannot produce.
	ErrUnknownFormat = errors.New("unknown image format")

	// ErrNoData indicates a chart table without rows.
	ErrNoData = errors.New("no data to plot")
)

// Rate limiting errors.
var (
	// ErrRateLimited indicates rate limiting was triggered.
	ErrRateLimited = errors.New("rate limited")
)

