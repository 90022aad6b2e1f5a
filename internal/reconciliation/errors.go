package reconciliation

import (
	"errors"
	"fmt"
)

// Ingestion errors. Only structural problems are errors; data problems inside
// well-formed sheets end up in diagnostics instead.
var (
	// ErrMissingColumn is returned when a sheet cannot hold a required column,
	// or when automatic currency detection finds no currency column.
	ErrMissingColumn = errors.New("required column is missing")

	// ErrEmptySheet is returned when a sheet has no rows at all.
	ErrEmptySheet = errors.New("sheet is empty")

	// ErrInvalidColumnMap is returned for malformed column map definitions.
	ErrInvalidColumnMap = errors.New("invalid column map")

	// ErrUnknownSource is returned when no row source was configured.
	ErrUnknownSource = errors.New("no invoice/credit note source configured")
)

// IngestError wraps an ingestion failure with the sheet and row it concerns.
type IngestError struct {
	// Op is the operation that failed (e.g., "ReadInvoices").
	Op string

	// Sheet is the sheet being read.
	Sheet string

	// Row is the 1-based row number, 0 when the failure is sheet-wide.
	Row int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("ingest: %s failed (sheet %q, row %d): %v", e.Op, e.Sheet, e.Row, e.Err)
	}
	return fmt.Sprintf("ingest: %s failed (sheet %q): %v", e.Op, e.Sheet, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *IngestError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewIngestError creates an IngestError.
func NewIngestError(op, sheet string, row int, err error) *IngestError {
	return &IngestError{
		Op:    op,
		Sheet: sheet,
		Row:   row,
		Err:   err,
	}
}

// ValidationError describes a rejected configuration or user input value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
