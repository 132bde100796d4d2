// Package analysis extracts a structured discussion report from a
// speaker-turn transcript: topics, per-speaker stances, decisions, risks
// and an overall agreement score.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/brunobiangulo/godigest/llm"
)

const analysisMaxTokens = 4096

// Stance is one speaker's position on a topic.
type Stance struct {
	Speaker  string `json:"speaker"`
	Position string `json:"position"`
	Quote    string `json:"quote,omitempty"`
}

// Topic is one discussion thread found in the transcript.
type Topic struct {
	Title    string   `json:"title"`
	Stances  []Stance `json:"stances"`
	Decision string   `json:"decision,omitempty"`
}

// Report is the structured analysis of a transcript.
type Report struct {
	Summary string   `json:"summary"`
	Topics  []Topic  `json:"topics"`
	Risks   []string `json:"risks,omitempty"`
	// AgreementConfidence scores how aligned the participants are, from 1
	// (open conflict) to 5 (full agreement).
	AgreementConfidence int `json:"agreement_confidence"`
}

// Engine runs transcript analysis against a generation provider.
type Engine struct {
	gen llm.Provider
}

// New returns an analysis Engine backed by the given provider.
func New(gen llm.Provider) *Engine {
	return &Engine{gen: gen}
}

// Analyze asks the model for a structured report over the transcript. A
// response that cannot be parsed as the expected JSON shape is a Malformed
// error.
func (e *Engine) Analyze(ctx context.Context, transcript string) (*Report, error) {
	resp, err := e.gen.Generate(ctx, llm.GenerateRequest{
		System:    analysisSystem,
		Prompt:    fmt.Sprintf(analysisPrompt, transcript),
		MaxTokens: analysisMaxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis generation: %w", err)
	}

	jsonStr, err := extractJSON(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformed, err)
	}

	var report Report
	if err := json.Unmarshal([]byte(jsonStr), &report); err != nil {
		return nil, fmt.Errorf("%w: unmarshalling analysis report: %v", llm.ErrMalformed, err)
	}

	if report.AgreementConfidence < 1 || report.AgreementConfidence > 5 {
		report.AgreementConfidence = deriveConfidence(report.Topics)
	}
	return &report, nil
}

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

func extractJSON(raw string) (string, error) {
	// Strip markdown code blocks first.
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	// Find the first '{' and last '}' to extract the JSON object.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// deriveConfidence estimates the agreement score from stance positions when
// the model omits it or returns one out of range.
func deriveConfidence(topics []Topic) int {
	var support, oppose int
	for _, t := range topics {
		for _, s := range t.Stances {
			switch classifyPosition(s.Position) {
			case 1:
				support++
			case -1:
				oppose++
			}
		}
	}

	switch {
	case support == 0 && oppose == 0:
		return 3
	case support == 0:
		return 1
	case oppose == 0:
		return 5
	case support > oppose:
		return 4
	case oppose > support:
		return 2
	default:
		return 3
	}
}

func classifyPosition(position string) int {
	p := strings.ToLower(position)
	for _, kw := range []string{"agree", "support", "favor", "approve", "endorse"} {
		if strings.Contains(p, kw) {
			return 1
		}
	}
	for _, kw := range []string{"disagree", "oppose", "against", "object", "reject", "concern"} {
		if strings.Contains(p, kw) {
			return -1
		}
	}
	return 0
}
