package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// transcribePrompt is the shared prompt used by all LLM providers. The
// reply is fed to the same extraction engine as Tesseract output, so the
// layout must be kept.
const transcribePrompt = `You are transcribing a scanned invoice. Read every piece of text in the image and write it out exactly as printed.

Rules:
- Keep the original reading order, top to bottom, left to right
- Put each printed line on its own line; keep blank lines between separate blocks such as addresses
- Keep labels and their values together, e.g. "Invoice Number: FAB1234567"
- Copy numbers, codes, currency symbols and dates exactly; do not convert or round them
- Write table rows on one line with the cells separated by single spaces
- Do not summarize, translate, correct or explain anything
- Do not use markdown code blocks
- If there is no readable text, reply with an empty message`

const (
	// ocrDPI is the resolution PDF pages are rendered at
	ocrDPI = 300.0
	// maxPDFPages caps how many pages are rendered for OCR
	maxPDFPages = 10
)

// pdfToImage converts the first page of a PDF to a PNG image
func pdfToImage(pdfData []byte) ([]byte, error) {
	pages, err := pdfToImages(pdfData, 1)
	if err != nil {
		return nil, err
	}
	return pages[0], nil
}

// pdfToImages renders up to limit pages of a PDF as PNG images
func pdfToImages(pdfData []byte, limit int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("opening PDF: %w", ErrEmptyText)
	}
	if n > limit {
		n = limit
	}

	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, ocrDPI)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG: %w", err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// Check for HEIC/HEIF format (common on iPhones) - Go's standard image package doesn't support it
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return nil, fmt.Errorf("%w %q. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF", ErrUnsupportedFormat, mimeType)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files typically start with specific magic bytes
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	// ftyp box at offset 4 with a HEIC-related brand
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// isPDF reports whether the data or its MIME type says PDF
func isPDF(data []byte, mimeType string) bool {
	return mimeType == "application/pdf" || bytes.HasPrefix(data, []byte("%PDF-"))
}

// normalizeContentType lowercases the MIME type, drops parameters and sniffs
// the data when the client sent nothing useful.
func normalizeContentType(data []byte, contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	return mimeType
}

// convertToPNG converts PDFs and non-PNG images to PNG format
// Returns the PNG data and a boolean indicating if conversion occurred
func convertToPNG(imageData []byte, mimeType string) ([]byte, bool, error) {
	if isPDF(imageData, mimeType) {
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, false, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, true, nil
	} else if mimeType != "image/png" || isHEICFormat(imageData) {
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, false, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, true, nil
	}
	return imageData, false, nil
}

// prepareImageData normalizes the MIME type and converts the image to PNG if needed
// Returns the final image data, the MIME type to use, and whether conversion occurred
func prepareImageData(imageData []byte, contentType string) ([]byte, string, bool, error) {
	if len(imageData) == 0 {
		return nil, "", false, fmt.Errorf("preparing image: %w", ErrUnsupportedFormat)
	}
	mimeType := normalizeContentType(imageData, contentType)

	finalImageData, converted, err := convertToPNG(imageData, mimeType)
	if err != nil {
		return nil, "", false, err
	}

	// Everything is PNG from here on
	return finalImageData, "image/png", converted, nil
}

// preparePages is prepareImageData for OCR: every PDF page is rendered,
// not just the first.
func preparePages(data []byte, contentType string) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("preparing image: %w", ErrUnsupportedFormat)
	}
	mimeType := normalizeContentType(data, contentType)
	if isPDF(data, mimeType) {
		pages, err := pdfToImages(data, maxPDFPages)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to images: %w", err)
		}
		return pages, nil
	}

	page, _, _, err := prepareImageData(data, mimeType)
	if err != nil {
		return nil, err
	}
	return [][]byte{page}, nil
}
