package godigest

import "time"

// ProgressKind identifies a pipeline phase notification.
type ProgressKind string

const (
	KindExtracting    ProgressKind = "extracting"
	KindTranscribing  ProgressKind = "transcribing"
	KindSummarizing   ProgressKind = "summarizing"
	KindChunkProgress ProgressKind = "chunk_progress"
	KindMerging       ProgressKind = "merging"
	KindResult        ProgressKind = "result"
	KindFailure       ProgressKind = "failure"
)

// ProgressEvent is a single phase notification emitted while a request is
// being processed. Events are strictly ordered; exactly one Result or
// Failure closes the sequence.
type ProgressEvent struct {
	Kind      ProgressKind `json:"kind"`
	Current   int          `json:"current,omitempty"`
	Total     int          `json:"total,omitempty"`
	Text      string       `json:"text,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ProgressFunc receives pipeline events as processing advances. The
// function is called synchronously from the pipeline goroutine; transports
// that can fail (disconnected clients) must swallow their own errors —
// emission never aborts the computation.
type ProgressFunc func(ProgressEvent)

// reporter wraps a ProgressFunc and enforces the event protocol: nothing is
// emitted after a terminal event, and at most one terminal event is sent.
type reporter struct {
	fn     ProgressFunc
	closed bool
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn}
}

func (r *reporter) emit(ev ProgressEvent) {
	if r.closed || r.fn == nil {
		return
	}
	if ev.Kind == KindResult || ev.Kind == KindFailure {
		r.closed = true
	}
	ev.Timestamp = time.Now().UTC()
	r.fn(ev)
}

func (r *reporter) phase(kind ProgressKind) {
	r.emit(ProgressEvent{Kind: kind})
}

func (r *reporter) chunk(current, total int) {
	r.emit(ProgressEvent{Kind: KindChunkProgress, Current: current, Total: total})
}

func (r *reporter) result(text string) {
	r.emit(ProgressEvent{Kind: KindResult, Text: text})
}

func (r *reporter) failure(message string) {
	r.emit(ProgressEvent{Kind: KindFailure, Message: message})
}
