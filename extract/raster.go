package extract

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageImage is one rasterized page of a paginated document, tagged with
// its 1-based page number.
type PageImage struct {
	PageNumber int
	Data       []byte
	MIMEType   string
}

// RasterizePDF returns the page images of a PDF in page order, at most one
// per page (scanned documents embed each page as a single full-page
// image), capped at maxPages. Pages without an embedded image are skipped;
// an empty result means the document has no image content to OCR.
func RasterizePDF(data []byte, maxPages int) ([]PageImage, error) {
	conf := model.NewDefaultConfiguration()

	pageImages, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu extract: %w", err)
	}

	var pages []PageImage
	for _, byObj := range pageImages {
		// One map per page, keyed by object number. Keep the largest
		// image on the page: that is the scan when one exists.
		var best *PageImage
		objNrs := make([]int, 0, len(byObj))
		for nr := range byObj {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			img := byObj[nr]
			raw, err := io.ReadAll(img)
			if err != nil || len(raw) == 0 {
				continue
			}
			mt := imageMIMEType(img.FileType)
			if mt == "" {
				continue
			}
			if best == nil || len(raw) > len(best.Data) {
				best = &PageImage{PageNumber: img.PageNr, Data: raw, MIMEType: mt}
			}
		}
		if best != nil {
			pages = append(pages, *best)
		}
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

// imageMIMEType maps pdfcpu file types to MIME types a vision service
// accepts.
func imageMIMEType(fileType string) string {
	switch fileType {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
