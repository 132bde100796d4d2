// Package summarizer turns document text into summaries through a
// generation provider. It owns the rate-limit retry policy: the llm layer
// classifies failures and the engine here decides how long to wait and how
// many times to try again.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brunobiangulo/godigest/llm"
)

// Mode selects the prompt framing for a summarization call.
type Mode int

const (
	// ModePrimary summarizes a document that fits in a single call.
	ModePrimary Mode = iota
	// ModeChunkPartial summarizes one segment of a larger document.
	ModeChunkPartial
	// ModeMerge reconciles partial summaries into one.
	ModeMerge
)

const (
	defaultMaxRetries    = 3
	defaultBackoffMargin = 1 * time.Second
	summaryMaxTokens     = 4096
)

// Config tunes the retry behavior.
type Config struct {
	// MaxRetries is the total number of attempts per call, not the number
	// of retries after the first failure.
	MaxRetries int
	// BackoffMargin is added on top of the provider's requested delay.
	BackoffMargin time.Duration
}

// DefaultConfig returns the standard retry settings.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    defaultMaxRetries,
		BackoffMargin: defaultBackoffMargin,
	}
}

// Engine produces summaries with rate-limit-aware retries.
type Engine struct {
	gen llm.Provider
	cfg Config

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Engine backed by the given provider.
func New(gen llm.Provider, cfg Config) *Engine {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffMargin <= 0 {
		cfg.BackoffMargin = defaultBackoffMargin
	}
	return &Engine{gen: gen, cfg: cfg, sleep: sleepContext}
}

// SummarizeChunk summarizes text under the given mode. Rate-limited calls
// are retried up to MaxRetries total attempts, waiting the provider's
// requested delay plus the backoff margin between attempts. Any other
// provider error fails immediately. An empty summary is returned as an
// empty string, not an error.
func (e *Engine) SummarizeChunk(ctx context.Context, text string, mode Mode) (string, error) {
	req := llm.GenerateRequest{
		System:    systemPrompt(mode),
		Prompt:    userPrompt(mode, text),
		MaxTokens: summaryMaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxRetries; attempt++ {
		resp, err := e.gen.Generate(ctx, req)
		if err == nil {
			return strings.TrimSpace(resp.Text), nil
		}

		var rle *llm.RateLimitError
		if !errors.As(err, &rle) {
			return "", err
		}
		lastErr = err

		if attempt == e.cfg.MaxRetries {
			break
		}
		wait := rle.RetryAfter + e.cfg.BackoffMargin
		slog.Warn("summarizer: rate limited, backing off",
			"attempt", attempt, "max_attempts", e.cfg.MaxRetries, "wait", wait)
		if err := e.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("rate limit retries exhausted after %d attempts: %w", e.cfg.MaxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
