package tablebuilder

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Settings holds the user-tunable configuration. A pipeline run takes a
// snapshot of the settings it starts with; later edits affect only later
// runs. Zero values are filled by DefaultSettings or LoadSettings.
type Settings struct {
	// DefaultDatabase is the USE target for generated scripts; empty omits it
	DefaultDatabase string `yaml:"default_database" env:"TB_DEFAULT_DATABASE"`
	// DefaultSchema is the schema for generated tables
	DefaultSchema string `yaml:"default_schema" env:"TB_DEFAULT_SCHEMA" env-default:"dbo"`
	// IncludeCreate toggles CREATE TABLE script generation
	IncludeCreate bool `yaml:"include_create" env:"TB_INCLUDE_CREATE" env-default:"true"`
	// IncludeInsert toggles INSERT script generation
	IncludeInsert bool `yaml:"include_insert" env:"TB_INCLUDE_INSERT" env-default:"true"`
	// UseTruncate prepends TRUNCATE TABLE to the INSERT script
	UseTruncate bool `yaml:"use_truncate" env:"TB_USE_TRUNCATE"`
	// BatchSize is the number of rows per INSERT statement
	BatchSize int `yaml:"batch_size" env:"TB_BATCH_SIZE" env-default:"500"`
	// PreviewPercent is the share of rows shown in previews
	PreviewPercent int `yaml:"preview_percent" env:"TB_PREVIEW_PERCENT" env-default:"10"`
	// AutoPreview opens a preview automatically after detection
	AutoPreview bool `yaml:"auto_preview" env:"TB_AUTO_PREVIEW"`
	// SamplePercent is the share of rows the type inference engine samples
	SamplePercent int `yaml:"sample_percent" env:"TB_SAMPLE_PERCENT" env-default:"15"`
	// SamplingPolicy is "first" or "nth"
	SamplingPolicy string `yaml:"sampling_policy" env:"TB_SAMPLING_POLICY" env-default:"first"`
	// MaxTextLength is the NVARCHAR cap before columns become NVARCHAR(MAX)
	MaxTextLength int `yaml:"max_text_length" env:"TB_MAX_TEXT_LENGTH" env-default:"4000"`
	// MaxAdditionalColumns caps user-added columns in the column model
	MaxAdditionalColumns int `yaml:"max_additional_columns" env:"TB_MAX_ADDITIONAL_COLUMNS" env-default:"1"`
	// LargeFileThresholdMB is the cache/streaming cutoff in megabytes
	LargeFileThresholdMB float64 `yaml:"large_file_threshold_mb" env:"TB_LARGE_FILE_THRESHOLD_MB" env-default:"100"`
	// RaggedPolicy is "skip" or "pad"
	RaggedPolicy string `yaml:"ragged_policy" env:"TB_RAGGED_POLICY" env-default:"skip"`
	// NamingConvention is applied to column names before generation
	NamingConvention string `yaml:"naming_convention" env:"TB_NAMING_CONVENTION" env-default:"unchanged"`
	// ExtraDelimiters lists additional delimiter candidate characters
	ExtraDelimiters string `yaml:"extra_delimiters" env:"TB_EXTRA_DELIMITERS"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		DefaultSchema:        "dbo",
		IncludeCreate:        true,
		IncludeInsert:        true,
		BatchSize:            DefaultBatchSize,
		PreviewPercent:       10,
		SamplePercent:        15,
		SamplingPolicy:       "first",
		MaxTextLength:        DefaultMaxTextLength,
		MaxAdditionalColumns: 1,
		LargeFileThresholdMB: 100,
		RaggedPolicy:         "skip",
		NamingConvention:     "unchanged",
	}
}

// LoadSettings reads settings from a YAML file when it exists, then the
// environment. A missing or empty path falls back to environment and
// defaults only.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &s); err != nil {
				return s, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			return s, s.Validate()
		}
	}
	if err := cleanenv.ReadEnv(&s); err != nil {
		return s, fmt.Errorf("failed to read environment config: %w", err)
	}
	return s, s.Validate()
}

// Validate checks ranges and enum fields.
func (s Settings) Validate() error {
	if s.BatchSize < MinBatchSize {
		return fmt.Errorf("batch_size must be at least %d, got %d", MinBatchSize, s.BatchSize)
	}
	if s.PreviewPercent < 1 || s.PreviewPercent > 100 {
		return fmt.Errorf("preview_percent must be 1-100, got %d", s.PreviewPercent)
	}
	if s.SamplePercent < 1 || s.SamplePercent > 100 {
		return fmt.Errorf("sample_percent must be 1-100, got %d", s.SamplePercent)
	}
	if s.MaxTextLength < TextLengthBucket {
		return fmt.Errorf("max_text_length must be at least %d, got %d", TextLengthBucket, s.MaxTextLength)
	}
	if s.MaxAdditionalColumns < 0 {
		return fmt.Errorf("max_additional_columns must not be negative, got %d", s.MaxAdditionalColumns)
	}
	if s.LargeFileThresholdMB <= 0 {
		return fmt.Errorf("large_file_threshold_mb must be positive, got %v", s.LargeFileThresholdMB)
	}
	if _, err := ParseSamplingPolicy(s.SamplingPolicy); err != nil {
		return err
	}
	if _, err := ParseRaggedPolicy(s.RaggedPolicy); err != nil {
		return err
	}
	if _, err := ParseNamingConvention(s.NamingConvention); err != nil {
		return err
	}
	return nil
}

// samplingPolicy returns the parsed sampling policy, defaulting on error.
func (s Settings) samplingPolicy() SamplingPolicy {
	p, _ := ParseSamplingPolicy(s.SamplingPolicy)
	return p
}

// raggedPolicy returns the parsed ragged-row policy, defaulting on error.
func (s Settings) raggedPolicy() RaggedPolicy {
	p, _ := ParseRaggedPolicy(s.RaggedPolicy)
	return p
}

// namingConvention returns the parsed naming convention, defaulting on error.
func (s Settings) namingConvention() NamingConvention {
	nc, _ := ParseNamingConvention(s.NamingConvention)
	return nc
}

// extraDelimiters returns the configured extra delimiter candidates.
func (s Settings) extraDelimiters() []rune {
	return []rune(s.ExtraDelimiters)
}
