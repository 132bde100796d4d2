package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// MinViableText is the threshold below which a document's native text
// extraction is considered failed and the OCR fallback (when available)
// takes over.
const MinViableText = 50

// ErrUnsupportedType is returned when no adapter handles the declared
// media type.
var ErrUnsupportedType = errors.New("extract: unsupported media type")

// ErrLegacyFormat is returned for legacy binary Office formats that need
// external conversion before they can be processed.
var ErrLegacyFormat = errors.New("extract: legacy format requires conversion to its OOXML equivalent")

// Adapter converts raw file bytes of one or more media types into plain
// text. Implementations are stateless; the same bytes always produce the
// same text.
type Adapter interface {
	Extract(ctx context.Context, data []byte) (string, error)
	SupportedTypes() []string
}

// legacyTypes are recognized but rejected: the old binary Office containers
// are not parsed natively.
var legacyTypes = map[string]bool{
	"application/msword":            true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.ms-excel":      true,
}

// Registry resolves a declared media type (plus filename as a tie-breaker)
// to an extraction adapter.
type Registry struct {
	adapters map[string]Adapter
	byExt    map[string]Adapter
}

// NewRegistry returns a Registry with all built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		byExt:    make(map[string]Adapter),
	}

	text := &TextAdapter{}
	pdf := &PDFAdapter{}
	docx := &DOCXAdapter{}
	pptx := &PPTXAdapter{}
	xlsx := &XLSXAdapter{}

	for _, a := range []Adapter{text, pdf, docx, pptx, xlsx} {
		for _, t := range a.SupportedTypes() {
			r.adapters[t] = a
		}
	}

	r.byExt[".txt"] = text
	r.byExt[".md"] = text
	r.byExt[".csv"] = text
	r.byExt[".pdf"] = pdf
	r.byExt[".docx"] = docx
	r.byExt[".pptx"] = pptx
	r.byExt[".xlsx"] = xlsx

	return r
}

// Register adds or replaces the adapter for a media type.
func (r *Registry) Register(mediaType string, a Adapter) {
	r.adapters[strings.ToLower(mediaType)] = a
}

// Resolve returns the adapter for the declared media type, falling back to
// the filename extension when the type is missing or generic. Legacy Office
// types and unknown types come back as errors so the request can be
// rejected before the pipeline starts.
func (r *Registry) Resolve(mediaType, filename string) (Adapter, error) {
	mt := normalizeMediaType(mediaType)

	if legacyTypes[mt] {
		return nil, fmt.Errorf("%w: %s", ErrLegacyFormat, mt)
	}

	if a, ok := r.adapters[mt]; ok {
		return a, nil
	}

	// Generic or absent types are resolved by extension.
	if mt == "" || mt == "application/octet-stream" || strings.HasPrefix(mt, "text/") {
		ext := strings.ToLower(filepath.Ext(filename))
		if a, ok := r.byExt[ext]; ok {
			return a, nil
		}
		// Any remaining text/* subtype decodes as plain text.
		if strings.HasPrefix(mt, "text/") {
			return r.adapters["text/plain"], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
}

// normalizeMediaType lowercases and strips parameters such as charset.
func normalizeMediaType(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt
}
