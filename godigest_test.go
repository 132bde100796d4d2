package godigest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brunobiangulo/godigest/analysis"
	"github.com/brunobiangulo/godigest/extract"
	"github.com/brunobiangulo/godigest/llm"
	"github.com/brunobiangulo/godigest/summarizer"
)

// stubLLM answers Generate with a fixed transform of the prompt and
// records every request.
type stubLLM struct {
	reply func(req llm.GenerateRequest) (string, error)
	reqs  []llm.GenerateRequest

	transcript    string
	transcribeErr error
}

func (s *stubLLM) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.reqs = append(s.reqs, req)
	text, err := s.reply(req)
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: text}, nil
}

func (s *stubLLM) Transcribe(ctx context.Context, req llm.TranscribeRequest) (string, error) {
	if s.transcribeErr != nil {
		return "", s.transcribeErr
	}
	return s.transcript, nil
}

func fixedReply(text string) func(llm.GenerateRequest) (string, error) {
	return func(llm.GenerateRequest) (string, error) { return text, nil }
}

// newTestEngine builds an engine with no inter-chunk delay so pipeline
// tests run instantly.
func newTestEngine(gen *stubLLM, chunkSize int) *engine {
	return &engine{
		cfg: Config{
			ChunkSizeChars:    chunkSize,
			InterChunkDelayMs: 0,
			MaxRetries:        3,
			MaxOCRPages:       20,
		},
		registry: extract.NewRegistry(),
		summz:    summarizer.New(gen, summarizer.Config{MaxRetries: 1}),
		analyzer: analysis.New(gen),
		sleep:    sleepContext,
	}
}

func textDoc(content string) SourceDocument {
	return SourceDocument{Data: []byte(content), MIMEType: "text/plain", Filename: "input.txt"}
}

func collectEvents(events *[]ProgressEvent) Option {
	return WithProgress(func(ev ProgressEvent) {
		*events = append(*events, ev)
	})
}

func kinds(events []ProgressEvent) []ProgressKind {
	out := make([]ProgressKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSummarizeSingleChunk(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("a fine summary")}
	e := newTestEngine(gen, 8000)

	var events []ProgressEvent
	summary, err := e.Summarize(context.Background(), textDoc("short document text"), collectEvents(&events))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.Text != "a fine summary" {
		t.Errorf("Text = %q", summary.Text)
	}
	if summary.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1", summary.Chunks)
	}
	if summary.Transcribed {
		t.Error("Transcribed = true for a text document")
	}

	want := []ProgressKind{KindExtracting, KindSummarizing, KindResult}
	got := kinds(events)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if events[len(events)-1].Text != "a fine summary" {
		t.Errorf("result event text = %q", events[len(events)-1].Text)
	}
}

func TestSummarizeMultiChunk(t *testing.T) {
	// Short partial summaries keep the merge input under one chunk, so the
	// merge is a single call and the call count is predictable.
	gen := &stubLLM{reply: fixedReply("ok")}
	e := newTestEngine(gen, 100)

	// Enough sentence text to exceed one 100-char chunk several times over.
	text := strings.Repeat("This sentence pads out the document nicely. ", 12)

	var events []ProgressEvent
	summary, err := e.Summarize(context.Background(), textDoc(text), collectEvents(&events))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	total := summary.Chunks
	if total < 2 {
		t.Fatalf("Chunks = %d, want a multi-chunk run", total)
	}

	want := []ProgressKind{KindExtracting}
	for i := 0; i <= total; i++ {
		want = append(want, KindChunkProgress)
	}
	want = append(want, KindMerging, KindResult)

	got := kinds(events)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	// Chunk counters run 0..total in order, all against the same total.
	idx := 0
	for _, ev := range events {
		if ev.Kind != KindChunkProgress {
			continue
		}
		if ev.Current != idx || ev.Total != total {
			t.Errorf("chunk event = %d/%d, want %d/%d", ev.Current, ev.Total, idx, total)
		}
		idx++
	}

	// The merge call sees the labeled partials under merge framing.
	mergeReq := gen.reqs[len(gen.reqs)-1]
	if !strings.Contains(mergeReq.Prompt, "Part 1:") || !strings.Contains(mergeReq.Prompt, "Part 2:") {
		t.Errorf("merge prompt missing part labels:\n%s", mergeReq.Prompt)
	}
	if !strings.Contains(mergeReq.System, "reconciling partial summaries") {
		t.Errorf("final call system prompt = %q, want merge framing", mergeReq.System)
	}
	if !strings.Contains(gen.reqs[0].System, "one segment of a longer document") {
		t.Errorf("chunk call system prompt = %q, want segment framing", gen.reqs[0].System)
	}
	if len(gen.reqs) != total+1 {
		t.Errorf("llm calls = %d, want %d (one per chunk plus one merge)", len(gen.reqs), total+1)
	}
}

func TestSummarizeInterChunkDelay(t *testing.T) {
	// Short replies keep the merge to a single call, so the only pacing
	// comes from the chunk loop: one wait between consecutive chunk calls,
	// none after the last one.
	gen := &stubLLM{reply: fixedReply("ok")}
	e := newTestEngine(gen, 100)
	e.cfg.InterChunkDelayMs = 250

	var waits []time.Duration
	e.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	text := strings.Repeat("This sentence pads out the document nicely. ", 12)
	summary, err := e.Summarize(context.Background(), textDoc(text))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	total := summary.Chunks
	if total < 2 {
		t.Fatalf("Chunks = %d, want a multi-chunk run", total)
	}
	if len(waits) != total-1 {
		t.Fatalf("waits = %d, want %d (between consecutive chunks only)", len(waits), total-1)
	}
	for i, d := range waits {
		if d != 250*time.Millisecond {
			t.Errorf("wait %d = %v, want 250ms", i, d)
		}
	}
}

func TestSummarizeEmptyExtraction(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("unused")}
	e := newTestEngine(gen, 8000)

	var events []ProgressEvent
	_, err := e.Summarize(context.Background(), textDoc("   \n\t  "), collectEvents(&events))
	if !errors.Is(err, ErrExtractionEmpty) {
		t.Fatalf("error = %v, want ErrExtractionEmpty", err)
	}

	got := kinds(events)
	want := []ProgressKind{KindExtracting, KindFailure}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if len(gen.reqs) != 0 {
		t.Errorf("llm calls = %d, want 0", len(gen.reqs))
	}
}

func TestSummarizeInputRejected(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("unused")}
	e := newTestEngine(gen, 8000)

	tests := []struct {
		name string
		doc  SourceDocument
	}{
		{"empty data", SourceDocument{MIMEType: "text/plain", Filename: "a.txt"}},
		{"unknown type", SourceDocument{Data: []byte("x"), MIMEType: "application/x-archive", Filename: "a.bin"}},
		{"legacy doc", SourceDocument{Data: []byte("x"), MIMEType: "application/msword", Filename: "a.doc"}},
		{"legacy xls", SourceDocument{Data: []byte("x"), MIMEType: "application/vnd.ms-excel", Filename: "a.xls"}},
		{"audio without transcriber", SourceDocument{Data: []byte("x"), MIMEType: "audio/mpeg", Filename: "a.mp3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []ProgressEvent
			_, err := e.Summarize(context.Background(), tt.doc, collectEvents(&events))
			if !errors.Is(err, ErrInputRejected) {
				t.Fatalf("error = %v, want ErrInputRejected", err)
			}
			// Rejection happens before the pipeline starts; no events at all.
			if len(events) != 0 {
				t.Errorf("events = %v, want none", kinds(events))
			}
		})
	}
}

func TestSummarizeCorruptUpload(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("unused")}
	e := newTestEngine(gen, 8000)

	// Declared as DOCX but the bytes are not a zip archive, so the adapter
	// fails to parse. That is the client's upload, not a service outage.
	doc := SourceDocument{
		Data:     []byte("PK\x03\x04 truncated"),
		MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Filename: "broken.docx",
	}

	var events []ProgressEvent
	_, err := e.Summarize(context.Background(), doc, collectEvents(&events))
	if !errors.Is(err, ErrExtractionEmpty) {
		t.Fatalf("error = %v, want ErrExtractionEmpty", err)
	}
	if errors.Is(err, ErrService) {
		t.Error("a corrupt upload must not classify as a service error")
	}

	got := kinds(events)
	want := []ProgressKind{KindExtracting, KindFailure}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if len(gen.reqs) != 0 {
		t.Errorf("llm calls = %d, want 0", len(gen.reqs))
	}
}

func TestSummarizeTranscription(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("meeting summary")}
	gen.transcript = "Alice: hello\nBob: hi"
	e := newTestEngine(gen, 8000)
	e.transcribe = gen

	var events []ProgressEvent
	doc := SourceDocument{Data: []byte("RIFF..."), MIMEType: "audio/wav", Filename: "call.wav"}
	summary, err := e.Summarize(context.Background(), doc, collectEvents(&events))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if !summary.Transcribed {
		t.Error("Transcribed = false for audio input")
	}
	want := []ProgressKind{KindTranscribing, KindSummarizing, KindResult}
	if fmt.Sprint(kinds(events)) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", kinds(events), want)
	}
	if !strings.Contains(gen.reqs[0].Prompt, "Alice: hello") {
		t.Error("summarization prompt does not carry the transcript")
	}
}

func TestSummarizeServiceFailure(t *testing.T) {
	gen := &stubLLM{reply: func(llm.GenerateRequest) (string, error) {
		return "", &llm.StatusError{Code: 500, Body: "upstream down"}
	}}
	e := newTestEngine(gen, 8000)

	var events []ProgressEvent
	_, err := e.Summarize(context.Background(), textDoc("some text"), collectEvents(&events))
	if !errors.Is(err, ErrService) {
		t.Fatalf("error = %v, want ErrService", err)
	}

	failures := 0
	for _, ev := range events {
		if ev.Kind == KindFailure {
			failures++
		}
		if ev.Kind == KindResult {
			t.Error("a failed run must not emit a result event")
		}
	}
	if failures != 1 {
		t.Errorf("failure events = %d, want exactly 1", failures)
	}
}

func TestSummarizeRateLimitExhaustionBecomesServiceError(t *testing.T) {
	gen := &stubLLM{reply: func(llm.GenerateRequest) (string, error) {
		return "", &llm.RateLimitError{RetryAfter: time.Millisecond, Body: "429"}
	}}
	e := newTestEngine(gen, 8000) // MaxRetries 1, no sleeping

	_, err := e.Summarize(context.Background(), textDoc("some text"))
	if !errors.Is(err, ErrService) {
		t.Fatalf("error = %v, want rate-limit exhaustion promoted to ErrService", err)
	}
}

func TestSummarizeEmptyModelOutput(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("")}
	e := newTestEngine(gen, 8000)

	summary, err := e.Summarize(context.Background(), textDoc("some text"))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Text != emptySummaryText {
		t.Errorf("Text = %q, want the placeholder", summary.Text)
	}
}

func TestSummarizeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &stubLLM{reply: func(llm.GenerateRequest) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	e := newTestEngine(gen, 8000)

	var events []ProgressEvent
	_, err := e.Summarize(ctx, textDoc("some text"), collectEvents(&events))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	for _, ev := range events {
		if ev.Kind == KindResult || ev.Kind == KindFailure {
			t.Errorf("cancellation must not emit a terminal event, got %s", ev.Kind)
		}
	}
}

func TestMergeReducesOverRounds(t *testing.T) {
	// Hundreds of short partials whose join far exceeds one chunk: each
	// round re-chunks the joined text into fewer pieces than it had
	// partials, until the remainder fits a single merge call.
	gen := &stubLLM{reply: fixedReply("m")}
	e := newTestEngine(gen, 100)

	const n = 500
	partials := make([]string, n)
	for i := range partials {
		partials[i] = fmt.Sprintf("Part %d:\nitem %d", i+1, i+1)
	}

	got, err := e.merge(context.Background(), partials)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got != "m" {
		t.Errorf("merge = %q, want the final model output", got)
	}

	// Every call in the reduction carries the merge framing.
	for i, r := range gen.reqs {
		if !strings.Contains(r.System, "reconciling partial summaries") {
			t.Fatalf("call %d system prompt = %q, want merge framing", i, r.System)
		}
	}

	// Split calls between the first round (prompts hold the original partial
	// bodies) and everything after (prompts hold relabeled round outputs).
	firstRound, later := 0, 0
	for _, r := range gen.reqs {
		if strings.Contains(r.Prompt, "item ") {
			firstRound++
		} else {
			later++
		}
	}
	if firstRound <= 1 || firstRound >= n {
		t.Errorf("first round calls = %d, want a chunked round strictly below %d", firstRound, n)
	}
	if later < 2 {
		t.Errorf("later round calls = %d, want at least a second reduction round", later)
	}
	if later >= firstRound {
		t.Errorf("later rounds made %d calls against %d in the first, want a shrinking reduction", later, firstRound)
	}

	// Re-chunking preserves document order: the first call starts at the
	// first partial, and no call sees a later partial before an earlier one.
	if !strings.Contains(gen.reqs[0].Prompt, "item 1\n") {
		t.Errorf("first call prompt does not start the reduction at the first partial:\n%s", gen.reqs[0].Prompt)
	}
	seen := 0
	for _, r := range gen.reqs[:firstRound] {
		for seen < n {
			label := fmt.Sprintf("item %d", seen+1)
			if !strings.Contains(r.Prompt, label+"\n") && !strings.HasSuffix(r.Prompt, label) {
				break
			}
			seen++
		}
	}
	if seen != n {
		t.Errorf("first round covered partials up to %d, want all %d in order", seen, n)
	}
}

func TestMergeTerminates(t *testing.T) {
	// The model echoes long output, so re-chunking can never shrink the
	// partial count; the fallback single merge call must end the loop.
	long := strings.Repeat("still too long output. ", 30)
	gen := &stubLLM{reply: fixedReply(long)}
	e := newTestEngine(gen, 100)

	for _, n := range []int{2, 10, 50} {
		t.Run(fmt.Sprintf("partials_%d", n), func(t *testing.T) {
			partials := make([]string, n)
			for i := range partials {
				partials[i] = fmt.Sprintf("Part %d:\n%s", i+1, long)
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				if _, err := e.merge(context.Background(), partials); err != nil {
					t.Errorf("merge: %v", err)
				}
			}()

			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("merge did not terminate")
			}
		})
	}
}

func TestAnalyzeDocument(t *testing.T) {
	gen := &stubLLM{reply: fixedReply(`{
		"summary": "the discussion",
		"topics": [{"title": "budget", "stances": [
			{"speaker": "Speaker 1", "position": "supports it"}
		]}],
		"agreement_confidence": 5
	}`)}
	e := newTestEngine(gen, 8000)

	// Flat prose without speaker labels must be wrapped before analysis.
	report, err := e.Analyze(context.Background(), textDoc("We discussed the budget at length."))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Summary != "the discussion" {
		t.Errorf("Summary = %q", report.Summary)
	}
	if report.AgreementConfidence != 5 {
		t.Errorf("AgreementConfidence = %d, want 5", report.AgreementConfidence)
	}
	if report.Transcribed {
		t.Error("Transcribed = true for a text document")
	}
	if !strings.Contains(gen.reqs[0].Prompt, "Speaker 1: We discussed") {
		t.Errorf("analysis prompt should carry the wrapped transcript:\n%s", gen.reqs[0].Prompt)
	}
}

func TestAnalyzeMalformedReport(t *testing.T) {
	gen := &stubLLM{reply: fixedReply("not json")}
	e := newTestEngine(gen, 8000)

	_, err := e.Analyze(context.Background(), textDoc("some discussion"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"already a sentinel", ErrExtractionEmpty, ErrExtractionEmpty},
		{"unsupported type", extract.ErrUnsupportedType, ErrInputRejected},
		{"legacy format", extract.ErrLegacyFormat, ErrInputRejected},
		{"malformed llm response", llm.ErrMalformed, ErrMalformed},
		{"status error", &llm.StatusError{Code: 500}, ErrService},
		{"anything else", errors.New("boom"), ErrService},
		{"cancellation passes through", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Errorf("classify = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
