package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brunobiangulo/godigest"
)

type handler struct {
	engine godigest.Engine
}

func newHandler(e godigest.Engine) *handler {
	return &handler{engine: e}
}

// POST /summarize
// Accepts a multipart file upload and streams progress events as NDJSON.
// The terminal line carries either the summary text or the failure.
func (h *handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	doc, language, ok := readUpload(w, r)
	if !ok {
		return
	}

	runID := uuid.NewString()
	slog.Info("summarize run starting",
		"run_id", runID, "filename", doc.Filename, "bytes", len(doc.Data))

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	streaming := false

	// Write failures mean the client went away. The pipeline keeps running
	// to completion; there is no point aborting external work mid-flight
	// and the context will cancel it on disconnect anyway.
	progress := func(ev godigest.ProgressEvent) {
		if !streaming {
			streaming = true
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
		}
		if err := enc.Encode(ev); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	opts := []godigest.Option{godigest.WithProgress(progress)}
	if language != "" {
		opts = append(opts, godigest.WithLanguageHint(language))
	}

	summary, err := h.engine.Summarize(ctx, doc, opts...)
	if err != nil {
		slog.Error("summarize run failed", "run_id", runID, "error", err)
		// Rejected input fails before the stream opens, so a proper HTTP
		// status can still go out. Later failures were already streamed as
		// a failure event.
		if !streaming {
			writeJSON(w, statusFor(err), map[string]string{
				"error": err.Error(),
				"kind":  kindFor(err),
			})
		}
		return
	}

	slog.Info("summarize run finished",
		"run_id", runID, "chunks", summary.Chunks, "transcribed", summary.Transcribed)
}

// POST /analyze
// Accepts a multipart file upload and returns the structured report as one
// JSON document.
func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	doc, language, ok := readUpload(w, r)
	if !ok {
		return
	}

	runID := uuid.NewString()
	slog.Info("analyze run starting",
		"run_id", runID, "filename", doc.Filename, "bytes", len(doc.Data))

	var opts []godigest.Option
	if language != "" {
		opts = append(opts, godigest.WithLanguageHint(language))
	}

	report, err := h.engine.Analyze(ctx, doc, opts...)
	if err != nil {
		slog.Error("analyze run failed", "run_id", runID, "error", err)
		writeJSON(w, statusFor(err), map[string]string{
			"error": err.Error(),
			"kind":  kindFor(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// readUpload parses the multipart body into a SourceDocument. The optional
// "language" form field becomes the transcription language hint.
func readUpload(w http.ResponseWriter, r *http.Request) (godigest.SourceDocument, string, bool) {
	if err := r.ParseMultipartForm(100 << 20); err != nil { // 100MB max
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart file upload")
		return godigest.SourceDocument{}, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return godigest.SourceDocument{}, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		slog.Error("reading uploaded file", "error", err)
		return godigest.SourceDocument{}, "", false
	}

	doc := godigest.SourceDocument{
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
		Filename: header.Filename,
	}
	return doc, r.FormValue("language"), true
}

// kindFor classifies pipeline errors for the non-streaming error payload.
func kindFor(err error) string {
	switch {
	case errors.Is(err, godigest.ErrInputRejected):
		return "input_rejected"
	case errors.Is(err, godigest.ErrExtractionEmpty):
		return "extraction_empty"
	case errors.Is(err, godigest.ErrMalformed):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "service_error"
	}
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, godigest.ErrInputRejected):
		return http.StatusBadRequest
	case errors.Is(err, godigest.ErrExtractionEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, godigest.ErrMalformed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
