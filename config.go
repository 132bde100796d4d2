package godigest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the GoDigest engine.
type Config struct {
	// LLM endpoints. Generation is required; Vision enables the scanned-page
	// OCR fallback and Transcription enables audio input.
	Generation    LLMConfig `json:"generation" yaml:"generation"`
	Vision        LLMConfig `json:"vision" yaml:"vision"`
	Transcription LLMConfig `json:"transcription" yaml:"transcription"`

	// ChunkSizeChars is the maximum character length of a single chunk sent
	// to the generation service.
	ChunkSizeChars int `json:"chunk_size_chars" yaml:"chunk_size_chars"`

	// InterChunkDelayMs is the pause between consecutive chunk requests.
	// Sequential calls plus this delay are the only throttle against the
	// generation service's rate limits.
	InterChunkDelayMs int `json:"inter_chunk_delay_ms" yaml:"inter_chunk_delay_ms"`

	// MaxRetries is the total number of attempts (including the first) for
	// a rate-limited generation call.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxOCRPages caps how many pages of a scanned document are sent to the
	// vision service.
	MaxOCRPages int `json:"max_ocr_pages" yaml:"max_ocr_pages"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // openai, gemini, groq, ollama, openrouter, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with the standard pipeline limits.
// Provider endpoints must still be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		ChunkSizeChars:    8000,
		InterChunkDelayMs: 2500,
		MaxRetries:        3,
		MaxOCRPages:       20,
	}
}

// LoadConfig reads a config file, YAML or JSON by extension, on top of the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// applyDefaults fills zero values with the documented defaults.
func (c *Config) applyDefaults() {
	if c.ChunkSizeChars <= 0 {
		c.ChunkSizeChars = 8000
	}
	if c.InterChunkDelayMs < 0 {
		c.InterChunkDelayMs = 0
	} else if c.InterChunkDelayMs == 0 {
		c.InterChunkDelayMs = 2500
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.MaxOCRPages <= 0 {
		c.MaxOCRPages = 20
	}
}

// interChunkDelay returns the configured delay as a duration.
func (c *Config) interChunkDelay() time.Duration {
	return time.Duration(c.InterChunkDelayMs) * time.Millisecond
}
