/*
errors.go - Centralized error types for the upgrade advisor

PURPOSE:
  All error types in one place for consistency and discoverability.
  Importer, engine and stores wrap these with context; the API maps
  them to status codes through the helpers at the bottom.

ERROR CATEGORIES:
  1. Input errors   - Malformed history, non-numeric cells (InvalidInput)
  2. Import errors  - Structural problems in uploaded files (MissingColumn)
  3. Data errors    - Nothing loaded to compute on (DataUnavailable, MissingField)
  4. Store errors   - Database-level failures (Persistence, NotFound)

PROPAGATION:
  Row-level and date-level errors are collected and the batch continues.
  Column detection and distribution failures abort the operation.
  Nothing is retried automatically.

SEE ALSO:
  - importer/: RowError, MissingColumnError
  - upgrade/engine.go: DateError, ErrDataUnavailable
  - store/sqlite/sqlite.go: PersistenceError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for empty or malformed values, including
	// cells that are still non-numeric after locale cleansing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingColumn is returned when a required column cannot be found
	// by name, letter or position. The whole import is aborted.
	ErrMissingColumn = errors.New("missing column")

	// ErrMissingField is returned when records lack a field an analysis needs.
	ErrMissingField = errors.New("missing field")

	// ErrDataUnavailable is returned when no history or OTB data is loaded.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrPersistence is returned when a store operation fails.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound is returned when a referenced hotel, category or block doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingColumnError names the column that could not be resolved.
type MissingColumnError struct {
	Column string
	Sheet  string
}

func (e *MissingColumnError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("required column %q not found", e.Column)
	}
	return fmt.Sprintf("required column %q not found in sheet %q", e.Column, e.Sheet)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}

// RowError describes a single rejected row. Row is 1-based, as shown
// by spreadsheet tools.
type RowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %s (%q): %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

// PersistenceError wraps a driver error with the operation that failed.
type PersistenceError struct {
	Op   string
	Key  string
	Date Date
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s @ %s: %v", e.Op, e.Key, e.Date, e.Err)
}

// Is lets errors.Is match both ErrPersistence and the wrapped cause.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DateError records why a single stay date was skipped during a run.
type DateError struct {
	Date Date
	Err  error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Date, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrMissingField)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataUnavailable returns true if there was nothing to compute on.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}
