package llm

import (
	"context"
	"fmt"
)

// Provider is the interface for text-generation services.
type Provider interface {
	// Generate sends a single completion request and returns the produced
	// text. Failures are classified: *RateLimitError is retryable, every
	// other error is fatal to the calling operation.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// VisionProvider extends Provider with image understanding, used for the
// scanned-page OCR fallback.
type VisionProvider interface {
	Provider
	// DescribeImages sends a prompt plus one or more images and returns
	// the textual description.
	DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error)
}

// Transcriber extends Provider with speech-to-text, used for audio input.
type Transcriber interface {
	Provider
	// Transcribe converts raw audio bytes into plain text.
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// GenerateRequest is a single text-generation request.
type GenerateRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	// JSONMode requests a strict-JSON response where the provider supports it.
	JSONMode bool `json:"json_mode,omitempty"`
}

// GenerateResponse is the result of a generation request.
type GenerateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	TotalTokens  int    `json:"total_tokens"`
}

// Image is an encoded image handed to a vision model.
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// TranscribeRequest is a speech-to-text request.
type TranscribeRequest struct {
	Audio    []byte
	Filename string
	MIMEType string
	// Language is a hint (BCP-47 or ISO 639-1) passed to the service.
	Language string
}

// Config configures an LLM provider.
type Config struct {
	Provider string `json:"provider"` // openai, gemini, groq, ollama, lmstudio, openrouter, xai, custom
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
}

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllama(cfg), nil
	case "lmstudio":
		return NewLMStudio(cfg), nil
	case "openrouter":
		return NewOpenRouter(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	case "groq":
		return NewGroq(cfg), nil
	case "xai":
		return NewXAI(cfg), nil
	case "gemini":
		return NewGemini(cfg), nil
	case "custom":
		return NewOpenAICompat(cfg), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
