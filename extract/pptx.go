package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PPTXAdapter extracts text from PowerPoint OOXML decks, one block per
// slide in slide order, each prefixed with its slide number so the
// summary can reference deck structure.
type PPTXAdapter struct{}

func (a *PPTXAdapter) SupportedTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"}
}

var slideNamePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func (a *PPTXAdapter) Extract(ctx context.Context, data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PPTX: %w", err)
	}

	// Collect slide files (ppt/slides/slide1.xml, slide2.xml, ...).
	slideFiles := make(map[int]*zip.File)
	for _, f := range r.File {
		m := slideNamePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil || num <= 0 {
			continue
		}
		slideFiles[num] = f
	}

	nums := make([]int, 0, len(slideFiles))
	for n := range slideFiles {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var b strings.Builder
	for _, num := range nums {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rc, err := slideFiles[num].Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		text := slideText(raw)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Slide %d\n%s", num, text)
	}

	return b.String(), nil
}

// slideText pulls every a:t text run out of a slide's XML, one line per
// paragraph.
func slideText(slideXML []byte) string {
	var slide pptxSlide
	if err := xml.Unmarshal(slideXML, &slide); err != nil {
		return ""
	}

	var lines []string
	for _, sp := range slide.CSld.SpTree.SPs {
		if sp.TxBody == nil {
			continue
		}
		for _, para := range sp.TxBody.Paras {
			var b strings.Builder
			for _, run := range para.Runs {
				b.WriteString(run.Text)
			}
			line := strings.TrimSpace(b.String())
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// pptxSlide simplified XML structure
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			SPs []pptxSP `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxSP struct {
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxAPara `xml:"p"`
}

type pptxAPara struct {
	Runs []pptxARun `xml:"r"`
}

type pptxARun struct {
	Text string `xml:"t"`
}
