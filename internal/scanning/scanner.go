package scanning

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file is neither a decodable
	// image nor a PDF.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyText is returned when a scanner ran but found no text.
	ErrEmptyText = errors.New("no text found")
)

// Scanner defines the interface for turning an invoice file into text
type Scanner interface {
	// ScanText reads all text from an invoice image or PDF, line by line
	ScanText(data []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
