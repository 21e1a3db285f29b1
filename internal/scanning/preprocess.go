package scanning

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// images shorter than minOCRHeight are upscaled to ocrHeight
	minOCRHeight = 800
	ocrHeight    = 1200
)

// preprocess converts a PNG to grayscale and upscales small images, which
// noticeably improves Tesseract accuracy on phone photos and thumbnails.
func preprocess(pngData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(pngData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, ocrHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
