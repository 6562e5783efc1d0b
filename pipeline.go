package tablebuilder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pipeline orchestrates one run at a time: detect, count, infer, generate.
// A second Run while one is in flight is rejected with ErrBusy rather than
// queued.
type Pipeline struct {
	settings Settings
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewPipeline creates a pipeline. A nil logger disables summary logging.
func NewPipeline(settings Settings, logger *zap.Logger) *Pipeline {
	return &Pipeline{settings: settings, logger: logger}
}

// RunRequest describes one conversion run.
type RunRequest struct {
	// SourcePath is the input file
	SourcePath string
	// OutputDir receives the generated script files
	OutputDir string
	// Table overrides the table name derived from the file name
	Table TableName
	// DelimiterOverride forces the field delimiter instead of detection
	DelimiterOverride rune
	// Columns supplies an edited column model; nil runs inference
	Columns *ColumnModel
	// Truncate forces a TRUNCATE prologue regardless of settings
	Truncate bool
	// Progress optionally receives progress events; sends never block
	Progress chan<- ProgressEvent
}

// Run executes one conversion. The settings are snapshotted at entry.
// Cancellation yields a summary with StatusCancelled and a nil error;
// partially written outputs are flagged Incomplete.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*Summary, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()
	return p.run(ctx, req)
}

// Start launches Run on its own goroutine. The busy slot is claimed before
// returning, so a concurrent Start fails fast with ErrBusy. The summary is
// delivered on the returned channel; failures travel inside it.
func (p *Pipeline) Start(ctx context.Context, req RunRequest) (<-chan *Summary, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	done := make(chan *Summary, 1)
	go func() {
		defer p.release()
		summary, err := p.run(ctx, req)
		if summary == nil {
			summary = &Summary{
				SourcePath: req.SourcePath,
				Status:     StatusFailure,
				ErrorKind:  errorKind(err),
				Err:        err,
			}
		}
		done <- summary
	}()
	return done, nil
}

func (p *Pipeline) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrBusy
	}
	p.running = true
	return nil
}

func (p *Pipeline) release() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Running reports whether a run is in flight.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pipeline) run(ctx context.Context, req RunRequest) (*Summary, error) {
	settings := p.settings
	start := time.Now()
	emitter := newProgressEmitter(req.Progress)

	summary := &Summary{SourcePath: req.SourcePath}
	fail := func(err error) (*Summary, error) {
		summary.Elapsed = time.Since(start)
		summary.Status = StatusFailure
		summary.ErrorKind = errorKind(err)
		summary.Err = err
		summary.Log(p.logger)
		return summary, err
	}
	cancelled := func() (*Summary, error) {
		summary.Elapsed = time.Since(start)
		summary.Status = StatusCancelled
		summary.ErrorKind = errorKindCancelled
		summary.Log(p.logger)
		return summary, nil
	}

	emitter.emit(ProgressEvent{Phase: PhaseDetecting, RowsTotal: -1})
	desc, err := DescribeSource(req.SourcePath, req.DelimiterOverride, settings.extraDelimiters()...)
	if err != nil {
		return fail(err)
	}
	summary.SourceFormat = desc.Format
	summary.SourceBytes = desc.ByteSize
	summary.Delimiter = desc.Delimiter
	summary.LowConfidence = desc.LowConfidence

	reader, err := OpenSource(desc, settings.LargeFileThresholdMB)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = reader.Close() }()

	total, err := countRows(ctx, reader, emitter)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled()
		}
		return fail(err)
	}
	summary.TotalRows = total
	summary.RaggedRows = reader.RaggedCount()
	if total == 0 {
		return fail(fmt.Errorf("%w: %s", ErrEmptySource, req.SourcePath))
	}

	model := req.Columns
	if model == nil {
		emitter.emit(ProgressEvent{Phase: PhaseInferring, RowsTotal: total})
		inferred, err := InferColumns(reader, InferenceOptions{
			SamplePercent: settings.SamplePercent,
			Policy:        settings.samplingPolicy(),
			MaxTextLength: settings.MaxTextLength,
		})
		if err != nil {
			if ctx.Err() != nil {
				return cancelled()
			}
			return fail(err)
		}
		model = NewColumnModel(inferred, settings.MaxAdditionalColumns)
		model.ApplyConvention(settings.namingConvention())
	}
	if err := model.Validate(); err != nil {
		return fail(err)
	}
	columns := model.Columns()

	table := req.Table
	if table.String() == "" {
		table = TableNameFromPath(req.SourcePath)
	}
	cfg := TableConfig{
		Database:     settings.DefaultDatabase,
		Schema:       settings.DefaultSchema,
		Table:        table,
		RaggedPolicy: settings.raggedPolicy(),
	}

	if err := ctx.Err(); err != nil {
		return cancelled()
	}
	emitter.emit(ProgressEvent{Phase: PhaseGenerating, RowsTotal: total})
	if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	tableBase := cfg.Table.Sanitize().String()

	if settings.IncludeCreate {
		script, err := GenerateCreate(columns, cfg)
		if err != nil {
			return fail(err)
		}
		name := fmt.Sprintf("create_table_%s.sql", tableBase)
		path := filepath.Join(req.OutputDir, name)
		if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
			return fail(fmt.Errorf("failed to write %s: %w", path, err))
		}
		summary.Outputs = append(summary.Outputs, OutputFile{
			Name:     name,
			Path:     path,
			ByteSize: int64(len(script)),
		})
	}

	if settings.IncludeInsert {
		name := fmt.Sprintf("insert_into_%s.sql", tableBase)
		path := filepath.Join(req.OutputDir, name)
		out, err := os.Create(path)
		if err != nil {
			return fail(fmt.Errorf("failed to create %s: %w", path, err))
		}

		batchSize := NewBatchSize(settings.BatchSize).Int()
		var written int64
		emit := func(stmt string, rows int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := out.WriteString(stmt); err != nil {
				return err
			}
			if rows > 0 {
				written += int64(rows)
				emitter.emit(ProgressEvent{Phase: PhaseGenerating, RowsProcessed: written, RowsTotal: total})
			}
			return nil
		}

		stats, genErr := GenerateInsert(reader, columns, cfg, batchSize, settings.UseTruncate || req.Truncate, emit)
		closeErr := out.Close()

		output := OutputFile{Name: name, Path: path}
		if info, err := os.Stat(path); err == nil {
			output.ByteSize = info.Size()
		}
		if stats != nil {
			summary.RowsWritten = stats.RowsWritten
			summary.RowsSkipped = stats.RowsSkipped
			summary.Batches = stats.Batches
			output.RowCount = stats.RowsWritten
		}

		if genErr != nil || closeErr != nil {
			output.Incomplete = true
			summary.Outputs = append(summary.Outputs, output)
			if ctx.Err() != nil {
				return cancelled()
			}
			if genErr == nil {
				genErr = closeErr
			}
			return fail(genErr)
		}
		summary.Outputs = append(summary.Outputs, output)
	}

	summary.RaggedRows = reader.RaggedCount()
	summary.RowCountMatch = summary.RowsWritten+summary.RowsSkipped == summary.TotalRows
	if !settings.IncludeInsert {
		// Nothing consumed the rows; the counts trivially agree
		summary.RowCountMatch = true
	}
	summary.Elapsed = time.Since(start)
	summary.Status = StatusSuccess
	summary.Log(p.logger)
	return summary, nil
}

// countRows runs a full pass to pin the exact row count, checking for
// cancellation between batches.
func countRows(ctx context.Context, r *SourceReader, emitter *progressEmitter) (int64, error) {
	emitter.emit(ProgressEvent{Phase: PhaseReading, RowsTotal: -1})
	if r.Descriptor().RowCountExact {
		return r.Descriptor().RowCount, nil
	}

	if err := r.Reset(); err != nil {
		return 0, err
	}
	var processed int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		batch, err := r.ReadBatch(DefaultBatchSize)
		if err != nil {
			return 0, err
		}
		processed += int64(len(batch.Rows))
		emitter.emit(ProgressEvent{Phase: PhaseReading, RowsProcessed: processed, RowsTotal: -1})
		if batch.EOF {
			break
		}
	}
	return r.Descriptor().RowCount, r.Reset()
}

// InspectResult is the outcome of a dry inspection: detection, a preview
// slice, and inferred column types, with no scripts written.
type InspectResult struct {
	Descriptor *SourceDescriptor
	Preview    []Row
	Columns    []InferredColumn
}

// Inspect detects a source's shape, previews its leading rows, and runs
// type inference without generating any scripts.
func (p *Pipeline) Inspect(ctx context.Context, path string, delimiterOverride rune) (*InspectResult, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	settings := p.settings
	desc, err := DescribeSource(path, delimiterOverride, settings.extraDelimiters()...)
	if err != nil {
		return nil, err
	}

	reader, err := OpenSource(desc, settings.LargeFileThresholdMB)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preview, err := reader.Preview(settings.PreviewPercent)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inferred, err := InferColumns(reader, InferenceOptions{
		SamplePercent: settings.SamplePercent,
		Policy:        settings.samplingPolicy(),
		MaxTextLength: settings.MaxTextLength,
	})
	if err != nil {
		return nil, err
	}

	return &InspectResult{Descriptor: desc, Preview: preview, Columns: inferred}, nil
}
