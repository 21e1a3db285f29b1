package invoice

import (
	"time"

	"github.com/SahasransuAcharjya/bill-parser/internal/extraction"
)

// Invoice is an uploaded invoice file together with its OCR text and the
// fields extracted from it
type Invoice struct {
	ID             string             `json:"id"`
	Filename       string             `json:"filename"`
	ContentType    string             `json:"content_type"`
	Text           string             `json:"text"`
	Fields         *extraction.Result `json:"fields"`
	CatalogVersion string             `json:"catalog_version"`
	CreatedAt      time.Time          `json:"created_at"`
}
