package scanning

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Scanner interface using a local Tesseract install
type Tesseract struct {
	languages []string
}

// NewTesseract creates a new Tesseract Scanner instance. languages are
// Tesseract language codes such as "eng" or "eng+hin"; "eng" is used when
// none are given.
func NewTesseract(languages ...string) *Tesseract {
	var langs []string
	for _, l := range languages {
		for _, part := range strings.Split(l, "+") {
			if part = strings.TrimSpace(part); part != "" {
				langs = append(langs, part)
			}
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Tesseract{languages: langs}
}

// ScanText runs OCR over every page of the file
func (t *Tesseract) ScanText(data []byte, contentType string) (string, error) {
	pages, err := preparePages(data, contentType)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	// a fully automatic page segmentation keeps label/value lines apart
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}

	var texts []string
	for i, page := range pages {
		img, err := preprocess(page)
		if err != nil {
			return "", fmt.Errorf("preprocessing page %d: %w", i+1, err)
		}
		if err := client.SetImageFromBytes(img); err != nil {
			return "", fmt.Errorf("setting image: %w", err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("running OCR on page %d: %w", i+1, err)
		}
		if text = cleanTranscript(text); text != "" {
			texts = append(texts, text)
		}
	}

	slog.Debug("Tesseract finished", "pages", len(pages), "languages", t.languages)
	if len(texts) == 0 {
		return "", ErrEmptyText
	}
	return strings.Join(texts, "\n\n"), nil
}

// Close is a no-op; a client is created per scan
func (t *Tesseract) Close() error {
	return nil
}
