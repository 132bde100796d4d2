package llm

import "context"

// lmStudioProvider implements Provider for a local LM Studio server, which
// exposes the standard OpenAI-compatible API.
type lmStudioProvider struct {
	base openAICompatClient
}

// NewLMStudio creates a provider for LM Studio.
func NewLMStudio(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234"
	}
	return &lmStudioProvider{base: newOpenAICompatClient(cfg)}
}

func (p *lmStudioProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *lmStudioProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *lmStudioProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	return p.base.transcribe(ctx, req)
}
