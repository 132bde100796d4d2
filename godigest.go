// Package godigest summarizes and analyzes documents and audio recordings.
// Inputs are extracted (with OCR fallback for scanned PDFs and
// transcription for audio), split into chunks at safe text boundaries,
// summarized sequentially through an LLM provider, and merged back into a
// single summary, with ordered progress events along the way.
package godigest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brunobiangulo/godigest/analysis"
	"github.com/brunobiangulo/godigest/extract"
	"github.com/brunobiangulo/godigest/llm"
	"github.com/brunobiangulo/godigest/summarizer"
)

// Engine is the main entry point for the digest pipeline.
type Engine interface {
	// Summarize runs the full pipeline over one input: extraction or
	// transcription, chunking, per-chunk summarization and merge.
	Summarize(ctx context.Context, doc SourceDocument, opts ...Option) (*Summary, error)

	// Analyze transcribes or extracts the input as a speaker-turn
	// transcript and produces a structured discussion report.
	Analyze(ctx context.Context, doc SourceDocument, opts ...Option) (*Analysis, error)
}

// SourceDocument is one input to the pipeline. Data is the raw bytes;
// MIMEType and Filename both feed format detection, either may be empty.
type SourceDocument struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Summary is the result of a Summarize run.
type Summary struct {
	Text string `json:"text"`
	// Transcribed reports whether the input went through audio
	// transcription rather than text extraction.
	Transcribed bool `json:"transcribed"`
	// Chunks is how many chunks the extracted text was split into.
	Chunks int `json:"chunks"`
}

// Analysis is the result of an Analyze run.
type Analysis struct {
	Summary             string           `json:"summary"`
	Topics              []analysis.Topic `json:"topics"`
	Risks               []string         `json:"risks,omitempty"`
	AgreementConfidence int              `json:"agreement_confidence"`
	Transcribed         bool             `json:"transcribed"`
}

// Option configures a single run.
type Option func(*runOptions)

type runOptions struct {
	progress ProgressFunc
	language string
}

// WithProgress registers a callback for ordered progress events. The
// callback runs synchronously on the pipeline goroutine.
func WithProgress(fn ProgressFunc) Option {
	return func(o *runOptions) { o.progress = fn }
}

// WithLanguageHint passes a language hint to audio transcription.
func WithLanguageHint(lang string) Option {
	return func(o *runOptions) { o.language = lang }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg        Config
	registry   *extract.Registry
	summz      *summarizer.Engine
	analyzer   *analysis.Engine
	ocr        *extract.OCR
	transcribe llm.Transcriber

	// sleep paces consecutive chunk requests, swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a digest engine from the given configuration. The generation
// provider is required; vision and transcription providers are optional
// and their absence disables OCR fallback and audio input respectively.
func New(cfg Config) (Engine, error) {
	cfg.applyDefaults()

	genLLM, err := llm.NewProvider(llm.Config{
		Provider: cfg.Generation.Provider,
		Model:    cfg.Generation.Model,
		BaseURL:  cfg.Generation.BaseURL,
		APIKey:   cfg.Generation.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generation provider: %w", err)
	}

	e := &engine{
		cfg:      cfg,
		registry: extract.NewRegistry(),
		summz: summarizer.New(genLLM, summarizer.Config{
			MaxRetries: cfg.MaxRetries,
		}),
		analyzer: analysis.New(genLLM),
		sleep:    sleepContext,
	}

	if cfg.Vision.Provider != "" {
		visionLLM, err := llm.NewProvider(llm.Config{
			Provider: cfg.Vision.Provider,
			Model:    cfg.Vision.Model,
			BaseURL:  cfg.Vision.BaseURL,
			APIKey:   cfg.Vision.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating vision provider: %w", err)
		}
		vp, ok := visionLLM.(llm.VisionProvider)
		if !ok {
			return nil, fmt.Errorf("provider %q does not support vision input", cfg.Vision.Provider)
		}
		e.ocr = extract.NewOCR(vp, cfg.MaxOCRPages)
	}

	if cfg.Transcription.Provider != "" {
		transLLM, err := llm.NewProvider(llm.Config{
			Provider: cfg.Transcription.Provider,
			Model:    cfg.Transcription.Model,
			BaseURL:  cfg.Transcription.BaseURL,
			APIKey:   cfg.Transcription.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating transcription provider: %w", err)
		}
		tr, ok := transLLM.(llm.Transcriber)
		if !ok {
			return nil, fmt.Errorf("provider %q does not support audio transcription", cfg.Transcription.Provider)
		}
		e.transcribe = tr
	}

	return e, nil
}

// Summarize implements Engine.
func (e *engine) Summarize(ctx context.Context, doc SourceDocument, opts ...Option) (*Summary, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	return e.run(ctx, doc, o)
}

// Analyze implements Engine.
func (e *engine) Analyze(ctx context.Context, doc SourceDocument, opts ...Option) (*Analysis, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	text, transcribed, err := e.obtainText(ctx, doc, newReporter(o.progress), o)
	if err != nil {
		return nil, classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrExtractionEmpty
	}

	report, err := e.analyzer.Analyze(ctx, extract.EnsureSpeakerTurns(text))
	if err != nil {
		return nil, classify(err)
	}

	return &Analysis{
		Summary:             report.Summary,
		Topics:              report.Topics,
		Risks:               report.Risks,
		AgreementConfidence: report.AgreementConfidence,
		Transcribed:         transcribed,
	}, nil
}

// classify maps lower-layer errors onto the package sentinels so callers
// can branch on errors.Is. Rate-limit exhaustion surfaces as ErrService,
// never as a rate-limit error of its own.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInputRejected),
		errors.Is(err, ErrExtractionEmpty),
		errors.Is(err, ErrService),
		errors.Is(err, ErrMalformed):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrLegacyFormat):
		return fmt.Errorf("%w: %v", ErrInputRejected, err)
	case errors.Is(err, llm.ErrMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		// Provider failures, retry exhaustion and anything else from the
		// service side all collapse to ErrService.
		return fmt.Errorf("%w: %v", ErrService, err)
	}
}
