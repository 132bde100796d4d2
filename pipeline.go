package godigest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brunobiangulo/godigest/chunker"
	"github.com/brunobiangulo/godigest/extract"
	"github.com/brunobiangulo/godigest/llm"
	"github.com/brunobiangulo/godigest/summarizer"
)

// emptySummaryText is returned when the model yields nothing for the final
// merge. Callers always receive some text for a successful run.
const emptySummaryText = "No summary could be produced for this document."

// run executes the summarize pipeline for one input. Events flow through
// the reporter in a fixed order; exactly one Result or Failure event closes
// the sequence, except for rejected input (which fails before the pipeline
// starts) and cancellation (which stops everything, events included).
func (e *engine) run(ctx context.Context, doc SourceDocument, o runOptions) (*Summary, error) {
	rep := newReporter(o.progress)

	text, transcribed, err := e.obtainText(ctx, doc, rep, o)
	if err != nil {
		return nil, e.fail(rep, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, e.fail(rep, ErrExtractionEmpty)
	}

	chunks := chunker.Split(text, e.cfg.ChunkSizeChars)
	total := len(chunks)

	var final string
	if total == 1 {
		rep.phase(KindSummarizing)
		final, err = e.summz.SummarizeChunk(ctx, chunks[0].Content, summarizer.ModePrimary)
		if err != nil {
			return nil, e.fail(rep, err)
		}
	} else {
		partials := make([]string, 0, total)
		rep.chunk(0, total)
		for i, c := range chunks {
			s, err := e.summz.SummarizeChunk(ctx, c.Content, summarizer.ModeChunkPartial)
			if err != nil {
				return nil, e.fail(rep, err)
			}
			partials = append(partials, fmt.Sprintf("Part %d:\n%s", i+1, s))
			rep.chunk(i+1, total)

			if i < total-1 {
				if err := e.sleep(ctx, e.cfg.interChunkDelay()); err != nil {
					return nil, err
				}
			}
		}

		rep.phase(KindMerging)
		final, err = e.merge(ctx, partials)
		if err != nil {
			return nil, e.fail(rep, err)
		}
	}

	if strings.TrimSpace(final) == "" {
		final = emptySummaryText
	}

	rep.result(final)
	return &Summary{Text: final, Transcribed: transcribed, Chunks: total}, nil
}

// obtainText turns the input into plain text, transcribing audio and
// extracting documents. Input rejection happens before the first event so a
// rejected request produces no event at all.
func (e *engine) obtainText(ctx context.Context, doc SourceDocument, rep *reporter, o runOptions) (string, bool, error) {
	if len(doc.Data) == 0 {
		return "", false, fmt.Errorf("%w: empty input", ErrInputRejected)
	}

	if extract.IsAudio(doc.MIMEType, doc.Filename) {
		if e.transcribe == nil {
			return "", false, fmt.Errorf("%w: no transcription provider configured for audio input", ErrInputRejected)
		}
		rep.phase(KindTranscribing)
		transcript, err := e.transcribe.Transcribe(ctx, llm.TranscribeRequest{
			Audio:    doc.Data,
			Filename: doc.Filename,
			MIMEType: doc.MIMEType,
			Language: o.language,
		})
		if err != nil {
			return "", false, err
		}
		return transcript, true, nil
	}

	adapter, err := e.registry.Resolve(doc.MIMEType, doc.Filename)
	if err != nil {
		return "", false, err
	}

	rep.phase(KindExtracting)
	text, err := adapter.Extract(ctx, doc.Data)

	// Scanned PDFs yield little or no native text. When a vision provider
	// is available, rasterize and recognize the pages instead.
	if _, isPDF := adapter.(*extract.PDFAdapter); isPDF && e.ocr != nil {
		if err != nil || len(strings.TrimSpace(text)) < extract.MinViableText {
			slog.Info("native pdf text below threshold, falling back to ocr",
				"chars", len(strings.TrimSpace(text)), "extract_error", err)
			ocrText, ocrErr := e.ocr.ExtractPages(ctx, doc.Data)
			if ocrErr == nil {
				return ocrText, false, nil
			}
			slog.Warn("ocr fallback failed", "error", ocrErr)
			// Fall through to whatever native extraction produced.
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", false, err
		}
		// A parse failure here means the bytes themselves are unreadable,
		// which is a problem with the upload rather than the service.
		return "", false, fmt.Errorf("%w: %v", ErrExtractionEmpty, err)
	}
	return text, false, nil
}

// merge reduces labeled partial summaries to a single summary. When the
// joined partials still exceed the chunk size they are re-chunked and
// summarized again, repeatedly, with the same pacing as the first pass. A
// round that fails to shrink the summary count falls back to one merge call
// over the joined text so the reduction always terminates.
func (e *engine) merge(ctx context.Context, partials []string) (string, error) {
	for {
		joined := strings.Join(partials, "\n\n")
		if len(joined) <= e.cfg.ChunkSizeChars {
			return e.summz.SummarizeChunk(ctx, joined, summarizer.ModeMerge)
		}

		chunks := chunker.Split(joined, e.cfg.ChunkSizeChars)
		if len(chunks) >= len(partials) {
			slog.Warn("merge round did not reduce summary count, merging in one call",
				"partials", len(partials), "chunks", len(chunks))
			return e.summz.SummarizeChunk(ctx, joined, summarizer.ModeMerge)
		}

		next := make([]string, 0, len(chunks))
		for i, c := range chunks {
			s, err := e.summz.SummarizeChunk(ctx, c.Content, summarizer.ModeMerge)
			if err != nil {
				return "", err
			}
			next = append(next, fmt.Sprintf("Part %d:\n%s", i+1, s))

			if i < len(chunks)-1 {
				if err := e.sleep(ctx, e.cfg.interChunkDelay()); err != nil {
					return "", err
				}
			}
		}
		partials = next
	}
}

// fail classifies the error and emits the Failure event. Cancellation is
// not reported as a pipeline failure; the event stream just stops.
func (e *engine) fail(rep *reporter, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	err = classify(err)
	if !errors.Is(err, ErrInputRejected) {
		rep.failure(err.Error())
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
