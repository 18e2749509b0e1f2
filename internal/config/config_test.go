package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.AnthropicModel != "claude-3-7-sonnet-20250219" {
		t.Errorf("unexpected default model %q", cfg.AnthropicModel)
	}
	if cfg.ChunkSize != 6000 {
		t.Errorf("expected default chunk size 6000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 400 {
		t.Errorf("expected default overlap 400, got %d", cfg.ChunkOverlap)
	}
	if cfg.MaxRetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.MaxRetryAttempts)
	}
	if cfg.BackoffBaseDelay != time.Second {
		t.Errorf("expected 1s base delay, got %s", cfg.BackoffBaseDelay)
	}
	if cfg.ExtractionFailurePolicy != FailurePolicySkippable {
		t.Errorf("expected skippable policy, got %q", cfg.ExtractionFailurePolicy)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "2000")
	t.Setenv("EXTRACTION_FAILURE_POLICY", "fatal")
	t.Setenv("RUN_TIMEOUT", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ChunkSize != 2000 {
		t.Errorf("expected chunk size 2000, got %d", cfg.ChunkSize)
	}
	if cfg.ExtractionFailurePolicy != FailurePolicyFatal {
		t.Errorf("expected fatal policy, got %q", cfg.ExtractionFailurePolicy)
	}
	if cfg.RunTimeout != 5*time.Minute {
		t.Errorf("expected 5m timeout, got %s", cfg.RunTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			ChunkSize:                6000,
			ChunkOverlap:             400,
			MaxConcurrentExtractions: 4,
			MaxRetryAttempts:         3,
			ExtractionFailurePolicy:  FailurePolicySkippable,
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg := base()
	cfg.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero chunk size")
	}

	cfg = base()
	cfg.ChunkOverlap = 6000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for overlap >= chunk size")
	}

	cfg = base()
	cfg.ExtractionFailurePolicy = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown failure policy")
	}
}

func TestValidateServer_RequiresKeys(t *testing.T) {
	cfg := Config{
		ChunkSize:                6000,
		ChunkOverlap:             400,
		MaxConcurrentExtractions: 4,
		MaxRetryAttempts:         3,
		ExtractionFailurePolicy:  FailurePolicySkippable,
		WorkerCount:              2,
		MaxQueueSize:             10,
		AnthropicAPIKey:          "sk-test",
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error without API key")
	}
	cfg.APIKey = "secret"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("expected valid server config, got %v", err)
	}
}
