package tablebuilder

import (
	"time"

	"go.uber.org/zap"
)

// Status is the terminal state of a pipeline run.
type Status int

const (
	// StatusSuccess means all requested scripts were written in full
	StatusSuccess Status = iota
	// StatusFailure means the run stopped on an error
	StatusFailure
	// StatusCancelled means the run was cancelled by the caller
	StatusCancelled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusFailure:
		return "failure"
	case StatusCancelled:
		return "cancelled"
	default:
		return "success"
	}
}

// OutputFile describes one generated script file.
type OutputFile struct {
	// Name is the base file name
	Name string
	// Path is the full output path
	Path string
	// ByteSize is the written size in bytes
	ByteSize int64
	// RowCount is the number of data rows the file covers
	RowCount int64
	// Incomplete marks files cut short by cancellation or failure
	Incomplete bool
}

// Summary is the audit record of one pipeline run.
type Summary struct {
	// SourcePath is the input file path
	SourcePath string
	// SourceFormat is the detected base format
	SourceFormat SourceFormat
	// SourceBytes is the input size on disk
	SourceBytes int64
	// Delimiter is the delimiter used for delimited sources
	Delimiter rune
	// LowConfidence carries the detector's fallback flag
	LowConfidence bool
	// TotalRows is the source data row count
	TotalRows int64
	// RaggedRows is the number of rows with a mismatched field count
	RaggedRows int64
	// RowsWritten is the number of rows emitted into INSERT statements
	RowsWritten int64
	// RowsSkipped is the number of rows dropped under the ragged policy
	RowsSkipped int64
	// Batches is the number of INSERT statements emitted
	Batches int64
	// RowCountMatch reports RowsWritten+RowsSkipped == TotalRows
	RowCountMatch bool
	// Outputs lists the generated files
	Outputs []OutputFile
	// Elapsed is the wall-clock run duration
	Elapsed time.Duration
	// Status is the terminal state
	Status Status
	// ErrorKind names the failure class when Status is not success
	ErrorKind string
	// Err is the terminal error, nil on success or cancellation
	Err error
}

// Log writes the summary as one structured record.
func (s *Summary) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}

	outputs := make([]string, 0, len(s.Outputs))
	for _, out := range s.Outputs {
		outputs = append(outputs, out.Path)
	}

	fields := []zap.Field{
		zap.String("source", s.SourcePath),
		zap.String("format", s.SourceFormat.String()),
		zap.Int64("source_bytes", s.SourceBytes),
		zap.Int64("total_rows", s.TotalRows),
		zap.Int64("ragged_rows", s.RaggedRows),
		zap.Int64("rows_written", s.RowsWritten),
		zap.Int64("rows_skipped", s.RowsSkipped),
		zap.Int64("batches", s.Batches),
		zap.Bool("row_count_match", s.RowCountMatch),
		zap.Strings("outputs", outputs),
		zap.Duration("elapsed", s.Elapsed),
		zap.String("status", s.Status.String()),
	}
	if s.Delimiter != 0 {
		fields = append(fields, zap.String("delimiter", string(s.Delimiter)))
	}
	if s.LowConfidence {
		fields = append(fields, zap.Bool("low_confidence", true))
	}

	switch s.Status {
	case StatusFailure:
		fields = append(fields, zap.String("error_kind", s.ErrorKind), zap.Error(s.Err))
		logger.Error("run failed", fields...)
	case StatusCancelled:
		logger.Warn("run cancelled", fields...)
	default:
		logger.Info("run complete", fields...)
	}
}
