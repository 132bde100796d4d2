package llm

import "context"

// openRouterProvider implements Provider for OpenRouter, which fronts many
// hosted models behind a single OpenAI-compatible API.
//
// API key: set via config or OPENROUTER_API_KEY env var.
type openRouterProvider struct {
	base openAICompatClient
}

// NewOpenRouter creates a provider for OpenRouter.
func NewOpenRouter(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	return &openRouterProvider{base: newOpenAICompatClient(cfg)}
}

func (p *openRouterProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *openRouterProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *openRouterProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	return p.base.transcribe(ctx, req)
}
