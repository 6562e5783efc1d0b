package tablebuilder

import (
	"context"
	"errors"
)

// Standard errors shared across the pipeline. Per-row issues (ragged rows)
// are counted, never returned as errors; these cover per-run failures.
var (
	// errDuplicateColumnName is returned when a file contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")

	// ErrEmptySource indicates that the data source contains no rows
	ErrEmptySource = errors.New("tablebuilder: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("tablebuilder: unsupported file format")

	// ErrDecode indicates a byte sequence that cannot be decoded as UTF-8
	ErrDecode = errors.New("tablebuilder: undecodable byte sequence")

	// ErrSchemaConflict indicates an invalid column model (e.g. two generated
	// key columns, or zero columns); rejected before generation begins
	ErrSchemaConflict = errors.New("tablebuilder: schema conflict")

	// ErrBusy indicates that a pipeline run is already in flight
	ErrBusy = errors.New("tablebuilder: pipeline busy")

	// ErrColumnNotFound indicates a column model operation on an unknown name
	ErrColumnNotFound = errors.New("tablebuilder: column not found")

	// ErrColumnNotRemovable indicates removal of a column that came from
	// source data; only user-added columns may be removed
	ErrColumnNotRemovable = errors.New("tablebuilder: only user-added columns can be removed")

	// ErrTooManyColumns indicates the additional-column limit was reached
	ErrTooManyColumns = errors.New("tablebuilder: additional column limit reached")
)

// Error kind names as reported in the operation summary.
const (
	errorKindDecode         = "DecodeError"
	errorKindIO             = "IOFailure"
	errorKindSchemaConflict = "SchemaConflict"
	errorKindCancelled      = "Cancelled"
	errorKindUnknown        = "Unknown"
)

// errorKind maps an error to the taxonomy name used in summaries. I/O is the
// catch-all: any failure that is not a decode, schema, or cancellation issue
// came from reading the source or writing the output.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return errorKindCancelled
	case errors.Is(err, ErrDecode):
		return errorKindDecode
	case errors.Is(err, ErrSchemaConflict):
		return errorKindSchemaConflict
	case errors.Is(err, ErrEmptySource), errors.Is(err, ErrUnsupportedFormat):
		return errorKindIO
	case errors.Is(err, context.DeadlineExceeded):
		return errorKindCancelled
	default:
		return errorKindIO
	}
}
