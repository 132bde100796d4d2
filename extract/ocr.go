package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunobiangulo/godigest/llm"
)

// ocrPrompt demands non-empty output and described structure. Vision
// models skip tables and diagrams unless told otherwise.
const ocrPrompt = `You are transcribing page %d of a scanned document. Extract ALL visible text from this page image. Your output must not be empty.
- Preserve reading order and paragraph breaks
- Format tables as markdown tables
- Describe diagrams, charts and figures in [Diagram: ...] blocks
- Keep section numbering and headings`

// ocrFallbackPrompt is the simplified second attempt for pages where the
// structured prompt produced nothing.
const ocrFallbackPrompt = `Describe everything visible on this page image, including any text you can read, in plain prose. Do not return an empty answer.`

// pagePlaceholder marks a page whose content could not be recovered. The
// marker keeps the page range complete for downstream summarization.
const pagePlaceholder = "[content unavailable]"

const ocrMaxTokens = 4096

// OCR extracts text from scanned documents by rasterizing pages and
// sending them to a vision model, one page per call. Batching pages biases
// vision models toward the last image, so each page goes alone.
type OCR struct {
	vision   llm.VisionProvider
	maxPages int

	// rasterize is swappable for tests.
	rasterize func(data []byte, maxPages int) ([]PageImage, error)
}

// NewOCR returns an OCR extractor bounded to maxPages pages.
func NewOCR(vision llm.VisionProvider, maxPages int) *OCR {
	return &OCR{
		vision:    vision,
		maxPages:  maxPages,
		rasterize: RasterizePDF,
	}
}

// ExtractPages OCRs every page image of the document and concatenates the
// results in page order. Every page contributes a page-number marker, even
// pages that only yield the placeholder, so the summarizer sees the full
// page range. Only rasterization failure or a page-less document is an
// error; per-page recognition failures degrade to placeholders.
func (o *OCR) ExtractPages(ctx context.Context, data []byte) (string, error) {
	pages, err := o.rasterize(data, o.maxPages)
	if err != nil {
		return "", fmt.Errorf("rasterizing document: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("document has no page images to recognize")
	}

	var b strings.Builder
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text := o.recognizePage(ctx, page)
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s", page.PageNumber, text)
	}
	return b.String(), nil
}

// recognizePage runs the structured prompt, retries once with the
// simplified prompt on an empty answer, and falls back to the placeholder.
func (o *OCR) recognizePage(ctx context.Context, page PageImage) string {
	img := []llm.Image{{Data: page.Data, MIMEType: page.MIMEType}}

	prompt := fmt.Sprintf(ocrPrompt, page.PageNumber)
	for attempt, p := range []string{prompt, ocrFallbackPrompt} {
		resp, err := o.vision.DescribeImages(ctx, p, img, ocrMaxTokens)
		if err != nil {
			slog.Warn("ocr: page recognition failed",
				"page", page.PageNumber, "attempt", attempt+1, "error", err)
			continue
		}
		if text := strings.TrimSpace(resp.Text); text != "" {
			return text
		}
		slog.Warn("ocr: page produced empty text", "page", page.PageNumber, "attempt", attempt+1)
	}
	return pagePlaceholder
}
