package llm

import "context"

// ollamaProvider implements Provider for a local Ollama instance via its
// OpenAI-compatible endpoints. Vision-capable models (llama3.2-vision,
// llava) accept image content on the same chat endpoint; transcription is
// not available locally and surfaces the server's error.
type ollamaProvider struct {
	base openAICompatClient
}

// NewOllama creates a provider for Ollama.
func NewOllama(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:8b"
	}
	return &ollamaProvider{base: newOpenAICompatClient(cfg)}
}

func (p *ollamaProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *ollamaProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *ollamaProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	return p.base.transcribe(ctx, req)
}
