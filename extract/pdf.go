package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFAdapter extracts the native text layer of a PDF. Scanned documents
// typically come back (near-)empty here; the caller decides whether to
// fall through to OCR based on MinViableText.
type PDFAdapter struct{}

func (a *PDFAdapter) SupportedTypes() []string {
	return []string{"application/pdf", "application/x-pdf"}
}

func (a *PDFAdapter) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	totalPages := reader.NumPage()
	var b strings.Builder

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	return b.String(), nil
}
