package llm

import "context"

// groqProvider implements Provider for Groq's inference API.
// Groq uses the OpenAI-compatible API format and provides extremely
// fast inference for open-source models (Llama, Mixtral, Gemma, etc.),
// plus hosted whisper-large-v3 for transcription.
//
// API key: set via config or GROQ_API_KEY env var.
type groqProvider struct {
	base openAICompatClient
}

// NewGroq creates a provider for Groq.
func NewGroq(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	return &groqProvider{base: newOpenAICompatClient(cfg)}
}

func (p *groqProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return p.base.generate(ctx, req)
}

func (p *groqProvider) DescribeImages(ctx context.Context, prompt string, images []Image, maxTokens int) (*GenerateResponse, error) {
	return p.base.describeImages(ctx, prompt, images, maxTokens)
}

func (p *groqProvider) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	t := p.base
	t.cfg.Model = "whisper-large-v3"
	return t.transcribe(ctx, req)
}
