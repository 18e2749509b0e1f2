// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// FailurePolicySkippable omits failed segments from the report and
// marks it partial; FailurePolicyFatal fails the whole run on the
// first exhausted segment.
const (
	FailurePolicySkippable = "skippable"
	FailurePolicyFatal     = "fatal"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth
	APIKey string `env:"ASCENTCAST_API_KEY"`

	// Claude
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel      string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-7-sonnet-20250219"`
	MaxCompletionTokens int    `env:"MAX_COMPLETION_TOKENS" envDefault:"4000"`

	// Segmentation
	ChunkSize    int `env:"CHUNK_SIZE" envDefault:"6000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"400"`

	// Synthesis fold threshold, in runes of fragment text.
	SynthesisInputBudget int `env:"SYNTHESIS_INPUT_BUDGET" envDefault:"24000"`

	// Extraction concurrency and retries
	MaxConcurrentExtractions int           `env:"MAX_CONCURRENT_EXTRACTIONS" envDefault:"4"`
	MaxRetryAttempts         int           `env:"MAX_RETRY_ATTEMPTS" envDefault:"3"`
	BackoffBaseDelay         time.Duration `env:"BACKOFF_BASE_DELAY" envDefault:"1s"`
	BackoffMaxDelay          time.Duration `env:"BACKOFF_MAX_DELAY" envDefault:"30s"`
	RunTimeout               time.Duration `env:"RUN_TIMEOUT" envDefault:"10m"`
	ExtractionFailurePolicy  string        `env:"EXTRACTION_FAILURE_POLICY" envDefault:"skippable"`

	// Server worker pool
	WorkerCount  int `env:"WORKER_COUNT" envDefault:"2"`
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" envDefault:"50"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`

	// Job state
	JobTTL          time.Duration `env:"JOB_TTL" envDefault:"1h"`
	ReportCacheSize int           `env:"REPORT_CACHE_SIZE" envDefault:"64"`

	// Watch mode
	WatchInputDir      string `env:"WATCH_INPUT_DIR"`
	WatchOutputDir     string `env:"WATCH_OUTPUT_DIR" envDefault:"./reports"`
	WatchMaxConcurrent int    `env:"WATCH_MAX_CONCURRENT" envDefault:"2"`

	// PDF
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks settings every mode needs.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE")
	}
	if c.MaxConcurrentExtractions <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_EXTRACTIONS must be positive")
	}
	if c.MaxRetryAttempts <= 0 {
		return fmt.Errorf("MAX_RETRY_ATTEMPTS must be positive")
	}
	switch c.ExtractionFailurePolicy {
	case FailurePolicySkippable, FailurePolicyFatal:
	default:
		return fmt.Errorf("EXTRACTION_FAILURE_POLICY must be %q or %q",
			FailurePolicySkippable, FailurePolicyFatal)
	}
	return nil
}

// ValidateServer checks settings the HTTP server additionally needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("ASCENTCAST_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive")
	}
	return nil
}
