package scanning

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText implements the Scanner interface by reading the text layer of
// digitally generated PDFs. No OCR is involved, so it is fast and exact, but
// it returns ErrUnsupportedFormat for images and ErrEmptyText for scanned
// PDFs without a text layer.
type PDFText struct {
	maxPages int
}

// NewPDFText creates a new PDFText Scanner instance
func NewPDFText() *PDFText {
	return &PDFText{maxPages: maxPDFPages}
}

// ScanText reads the text layer row by row, top of the page first
func (p *PDFText) ScanText(data []byte, contentType string) (string, error) {
	if !isPDF(data, normalizeContentType(data, contentType)) {
		return "", fmt.Errorf("reading PDF text: %w", ErrUnsupportedFormat)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage() && i <= p.maxPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d: %w", i, err)
		}

		var sb strings.Builder
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					words = append(words, s)
				}
			}
			sb.WriteString(strings.Join(words, " "))
			sb.WriteString("\n")
		}
		if text := cleanTranscript(sb.String()); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", ErrEmptyText
	}
	return strings.Join(pages, "\n\n"), nil
}

// Close is a no-op
func (p *PDFText) Close() error {
	return nil
}
