package scanning

import (
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries each scanner in order and returns the first non-empty text.
// A typical chain reads the PDF text layer first and falls back to OCR.
type Chain struct {
	scanners []Scanner
}

// NewChain creates a Chain over scanners
func NewChain(scanners ...Scanner) *Chain {
	return &Chain{scanners: scanners}
}

// ScanText implements Scanner
func (c *Chain) ScanText(data []byte, contentType string) (string, error) {
	if len(c.scanners) == 0 {
		return "", fmt.Errorf("scanning: empty chain")
	}

	var errs []error
	for i, s := range c.scanners {
		text, err := s.ScanText(data, contentType)
		if err == nil && text == "" {
			err = ErrEmptyText
		}
		if err != nil {
			slog.Debug("Scanner in chain failed", "index", i, "error", err)
			errs = append(errs, err)
			continue
		}
		return text, nil
	}
	return "", errors.Join(errs...)
}

// Close closes every scanner in the chain
func (c *Chain) Close() error {
	var errs []error
	for _, s := range c.scanners {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
