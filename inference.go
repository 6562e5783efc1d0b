package tablebuilder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SamplingPolicy selects how the type inference engine draws its row sample.
type SamplingPolicy int

const (
	// SampleFirstPercent samples the first samplePercent% of rows (default)
	SampleFirstPercent SamplingPolicy = iota
	// SampleEveryNth samples every Nth row where N = 100/samplePercent
	SampleEveryNth
)

// ParseSamplingPolicy parses a sampling policy name.
func ParseSamplingPolicy(s string) (SamplingPolicy, error) {
	switch s {
	case "", "first":
		return SampleFirstPercent, nil
	case "nth":
		return SampleEveryNth, nil
	default:
		return SampleFirstPercent, fmt.Errorf("unknown sampling policy: %q", s)
	}
}

// InferenceOptions configures a type inference pass.
type InferenceOptions struct {
	// SamplePercent is the percentage of rows to sample (1-100)
	SamplePercent int
	// Policy selects first-percent or every-Nth sampling
	Policy SamplingPolicy
	// MaxTextLength is the NVARCHAR cap; longer columns become NVARCHAR(MAX)
	MaxTextLength int
}

// InferredColumn is the per-column result of a type inference pass.
type InferredColumn struct {
	// Name is the original column name from the source header
	Name string
	// Ordinal is the zero-based column position
	Ordinal int
	// Type is the joined SQL type tag
	Type ColumnType
	// Length is the NVARCHAR length for text columns (0 otherwise)
	Length int
	// LargeText is set when the observed length exceeds MaxTextLength;
	// such columns render as NVARCHAR(MAX)
	LargeText bool
	// Nullable is set when any sampled value was blank
	Nullable bool
}

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.000"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.000"},
	},
}

// isoDatePattern matches ISO8601 date-only values (DATE, not DATETIME).
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// booleanLiterals are the word literals recognized as BIT values. Bare 0/1
// classify as integers first per the predicate order.
var booleanLiterals = map[string]bool{
	"true": true, "false": false,
	"yes": true, "no": false,
	"1": true, "0": false,
}

// isISODate checks if a string value is an ISO8601 date
func isISODate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// isDatetime checks if a string value represents a datetime
func isDatetime(value string) bool {
	for _, dp := range datetimePatterns {
		if dp.pattern.MatchString(value) {
			for _, format := range dp.formats {
				if _, err := time.Parse(format, value); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// isGUID checks if a value is a canonical 8-4-4-4-12 GUID.
func isGUID(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

// classifyValue determines the most specific type of a single value. The
// predicate order is fixed: integer, float, ISO date, datetime, boolean
// literal, GUID, else text. Inference is a pure function of this order.
func classifyValue(value string) ColumnType {
	value = strings.TrimSpace(value)
	if value == "" {
		return ColumnTypeText
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n >= -2147483648 && n <= 2147483647 {
			return ColumnTypeInt
		}
		return ColumnTypeBigInt
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return ColumnTypeFloat
	}
	if isISODate(value) {
		return ColumnTypeDate
	}
	if isDatetime(value) {
		return ColumnTypeDatetime
	}
	if _, ok := booleanLiterals[strings.ToLower(value)]; ok {
		return ColumnTypeBit
	}
	if isGUID(value) {
		return ColumnTypeGUID
	}
	return ColumnTypeText
}

// chainRank orders the widening chain INT < BIGINT < FLOAT < DATETIME < TEXT.
// Types outside the chain return -1.
func chainRank(t ColumnType) int {
	switch t {
	case ColumnTypeInt:
		return 0
	case ColumnTypeBigInt:
		return 1
	case ColumnTypeFloat:
		return 2
	case ColumnTypeDatetime:
		return 3
	case ColumnTypeText:
		return 4
	default:
		return -1
	}
}

// joinTypes combines two per-value type observations into the least specific
// compatible type. Chain types widen along INT -> BIGINT -> FLOAT ->
// DATETIME -> TEXT. DATE widens to DATETIME; BIT and GUID are incomparable
// siblings that demote to TEXT on any conflicting value.
func joinTypes(a, b ColumnType) ColumnType {
	if a == b {
		return a
	}

	ra, rb := chainRank(a), chainRank(b)
	if ra >= 0 && rb >= 0 {
		if ra > rb {
			return a
		}
		return b
	}

	// DATE joins with DATETIME; everything else conflicts
	if a == ColumnTypeDate || b == ColumnTypeDate {
		other := a
		if a == ColumnTypeDate {
			other = b
		}
		if other == ColumnTypeDatetime {
			return ColumnTypeDatetime
		}
		return ColumnTypeText
	}

	// BIT and GUID conflict with anything but themselves
	return ColumnTypeText
}

// columnStats accumulates per-column observations during sampling.
type columnStats struct {
	joined   ColumnType
	seen     bool
	nullable bool
	maxLen   int
}

func (cs *columnStats) observe(value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		// Blank values are null signals; they do not affect the type join
		cs.nullable = true
		return
	}
	if l := len(value); l > cs.maxLen {
		cs.maxLen = l
	}
	t := classifyValue(trimmed)
	if !cs.seen {
		cs.joined = t
		cs.seen = true
		return
	}
	cs.joined = joinTypes(cs.joined, t)
}

// result finalizes the column type and text length for the stats.
func (cs *columnStats) result(name string, ordinal, maxTextLength int) InferredColumn {
	col := InferredColumn{
		Name:     name,
		Ordinal:  ordinal,
		Nullable: cs.nullable,
	}
	if !cs.seen {
		// No non-null values observed; default to TEXT and allow NULLs
		col.Type = ColumnTypeText
		col.Length = TextLengthBucket
		col.Nullable = true
		return col
	}
	col.Type = cs.joined
	if col.Type == ColumnTypeText {
		col.Length = textBucket(cs.maxLen)
		if maxTextLength > 0 && col.Length > maxTextLength {
			col.Length = 0
			col.LargeText = true
		}
	}
	return col
}

// textBucket rounds a byte length up to the next TextLengthBucket multiple,
// with a floor of one bucket.
func textBucket(length int) int {
	if length <= TextLengthBucket {
		return TextLengthBucket
	}
	buckets := (length + TextLengthBucket - 1) / TextLengthBucket
	return buckets * TextLengthBucket
}

// InferColumns draws a bounded row sample from the reader and derives a SQL
// type per column. The sample is either the first SamplePercent% of rows or
// every Nth row, capped at MaxSampleRows. Inference is deterministic: the
// same file with the same options always yields the same result. The reader
// is rewound before and after the pass.
func InferColumns(r *SourceReader, opts InferenceOptions) ([]InferredColumn, error) {
	pct := opts.SamplePercent
	if pct < 1 {
		pct = 1
	}
	if pct > 100 {
		pct = 100
	}
	maxText := opts.MaxTextLength
	if maxText == 0 {
		maxText = DefaultMaxTextLength
	}

	total, err := r.RowCount()
	if err != nil {
		return nil, err
	}

	target := total * int64(pct) / 100
	if target < 1 {
		target = 1
	}
	if target > MaxSampleRows {
		target = MaxSampleRows
	}

	stride := int64(1)
	if opts.Policy == SampleEveryNth {
		stride = int64(100 / pct)
		if stride < 1 {
			stride = 1
		}
	}

	if err := r.Reset(); err != nil {
		return nil, err
	}

	names := r.Descriptor().Columns
	stats := make([]columnStats, len(names))

	var sampled, index int64
	for sampled < target {
		batch, err := r.ReadBatch(DefaultBatchSize)
		if err != nil {
			return nil, err
		}
		for _, row := range batch.Rows {
			if row.Ragged {
				index++
				continue
			}
			if index%stride == 0 {
				for i := range stats {
					if i < len(row.Fields) {
						stats[i].observe(row.Fields[i])
					}
				}
				sampled++
				if sampled >= target {
					break
				}
			}
			index++
		}
		if batch.EOF {
			break
		}
	}

	if err := r.Reset(); err != nil {
		return nil, err
	}

	columns := make([]InferredColumn, len(names))
	for i, name := range names {
		columns[i] = stats[i].result(name, i, maxText)
	}
	return columns, nil
}
