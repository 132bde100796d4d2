package extract

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"
)

// TextAdapter handles plain text and markdown content.
type TextAdapter struct{}

func (a *TextAdapter) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown", "text/csv"}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (a *TextAdapter) Extract(ctx context.Context, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), nil
	}

	// Non-UTF-8 input: keep what decodes, replace the rest. Better a
	// readable summary with a few replacement runes than a hard failure.
	return strings.ToValidUTF8(string(data), "�"), nil
}
