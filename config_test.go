package godigest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ChunkSizeChars != 8000 {
		t.Errorf("ChunkSizeChars = %d, want 8000", cfg.ChunkSizeChars)
	}
	if cfg.InterChunkDelayMs != 2500 {
		t.Errorf("InterChunkDelayMs = %d, want 2500", cfg.InterChunkDelayMs)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.MaxOCRPages != 20 {
		t.Errorf("MaxOCRPages = %d, want 20", cfg.MaxOCRPages)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
generation:
  provider: groq
  model: llama-3.3-70b-versatile
  api_key: test-key
chunk_size_chars: 4000
max_retries: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Generation.Provider != "groq" {
		t.Errorf("Generation.Provider = %q, want groq", cfg.Generation.Provider)
	}
	if cfg.Generation.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Generation.Model = %q", cfg.Generation.Model)
	}
	if cfg.ChunkSizeChars != 4000 {
		t.Errorf("ChunkSizeChars = %d, want 4000", cfg.ChunkSizeChars)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	// Untouched fields keep their defaults.
	if cfg.InterChunkDelayMs != 2500 {
		t.Errorf("InterChunkDelayMs = %d, want default 2500", cfg.InterChunkDelayMs)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"generation": {"provider": "openai", "model": "gpt-4o-mini"}, "inter_chunk_delay_ms": 100}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Generation.Provider != "openai" {
		t.Errorf("Generation.Provider = %q, want openai", cfg.Generation.Provider)
	}
	if cfg.InterChunkDelayMs != 100 {
		t.Errorf("InterChunkDelayMs = %d, want 100", cfg.InterChunkDelayMs)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{ unclosed: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed config")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.ChunkSizeChars != 8000 || cfg.InterChunkDelayMs != 2500 || cfg.MaxRetries != 3 || cfg.MaxOCRPages != 20 {
		t.Errorf("applyDefaults left zero values: %+v", cfg)
	}

	// Negative delay means no delay, not the default.
	cfg = Config{InterChunkDelayMs: -1}
	cfg.applyDefaults()
	if cfg.InterChunkDelayMs != 0 {
		t.Errorf("InterChunkDelayMs = %d, want 0 for a negative input", cfg.InterChunkDelayMs)
	}
}

func TestInterChunkDelay(t *testing.T) {
	cfg := Config{InterChunkDelayMs: 2500}
	if got := cfg.interChunkDelay(); got != 2500*time.Millisecond {
		t.Errorf("interChunkDelay = %s, want 2.5s", got)
	}
}
