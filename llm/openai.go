package llm

import "context"

// openAIProvider implements Provider for the OpenAI API.
//
// Generation models: gpt-4o-mini (default), gpt-4o, gpt-4.1. The 4o family
// handles image input for the OCR fallback, and whisper-1 is selected
// automatically for transcription requests.
//
// API key: set via config or OPENAI_API_KEY env var.
type openAIProvider struct {
	base openAICompatClient
}

// NewOpenAI creates a provider for OpenAI.
func NewOpenAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &openAIProvider{base: newOpenAICompatClient(cfg)}
}

func (p *openAIProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *openAIProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *openAIProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	// The chat model is not valid for the transcription endpoint.
	t := p.base
	t.cfg.Model = "whisper-1"
	return t.transcribe(ctx, req)
}
