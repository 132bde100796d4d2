package llm

import "context"

// xaiProvider implements Provider for xAI's Grok models via the
// OpenAI-compatible API.
//
// API key: set via config or XAI_API_KEY env var.
type xaiProvider struct {
	base openAICompatClient
}

// NewXAI creates a provider for xAI.
func NewXAI(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "grok-3-mini"
	}
	return &xaiProvider{base: newOpenAICompatClient(cfg)}
}

func (p *xaiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *xaiProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *xaiProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	return p.base.transcribe(ctx, req)
}
