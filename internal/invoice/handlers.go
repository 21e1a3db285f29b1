package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/SahasransuAcharjya/bill-parser/internal/extraction"
	"github.com/SahasransuAcharjya/bill-parser/internal/scanning"
)

const (
	// maxUploadSize bounds multipart uploads; high-resolution phone photos fit
	maxUploadSize = int64(50 << 20)
	// maxTextSize bounds raw text sent to /api/extract
	maxTextSize = int64(1 << 20)
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes data as a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes the {"Error": message} body every failing endpoint uses
func writeError(w http.ResponseWriter, status int, message string) {
	setCORSHeaders(w)
	writeJSON(w, status, map[string]string{"Error": message})
}

// statusFor maps a service error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scanning.ErrUnsupportedFormat), errors.Is(err, scanning.ErrEmptyText), errors.Is(err, ErrScanFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// upload is a file read from a multipart form
type upload struct {
	filename    string
	contentType string
	data        []byte
}

// uploadError is a client mistake in the multipart form
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

// readUpload reads the first of fields present in the multipart form
func readUpload(r *http.Request, fields ...string) (*upload, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || err.Error() == "http: request body too large" {
			return nil, &uploadError{http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB."}
		}
		return nil, &uploadError{http.StatusBadRequest, "Error parsing form"}
	}

	var (
		f      multipart.File
		header *multipart.FileHeader
		err    = http.ErrMissingFile
	)
	for _, field := range fields {
		if f, header, err = r.FormFile(field); err == nil {
			break
		}
	}
	if err != nil {
		// browsers send an empty filename when no file was chosen, which
		// arrives as a plain form value
		for _, field := range fields {
			if _, ok := r.MultipartForm.Value[field]; ok {
				return nil, &uploadError{http.StatusBadRequest, "No selected file"}
			}
		}
		return nil, &uploadError{http.StatusBadRequest, "No file part"}
	}
	defer f.Close()

	if header.Filename == "" {
		return nil, &uploadError{http.StatusBadRequest, "No selected file"}
	}
	if header.Size > maxUploadSize {
		return nil, &uploadError{http.StatusRequestEntityTooLarge, "File is too large. Maximum size is 50MB."}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) == 0 {
		return nil, &uploadError{http.StatusBadRequest, "No selected file"}
	}

	return &upload{
		filename:    header.Filename,
		contentType: uploadContentType(header),
		data:        data,
	}, nil
}

// uploadContentType returns the part's MIME type, guessing from the
// extension when the client sent none
func uploadContentType(header *multipart.FileHeader) string {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// writeUploadError reports a readUpload failure
func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		writeError(w, ue.status, ue.message)
		return
	}
	slog.Error("Error reading upload", "error", err)
	writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":          "available",
		"version":         s.version,
		"catalog_version": s.service.engine.Version(),
	})
}

// handleIndex serves the upload form
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	renderTemplate(w, http.StatusOK, "index.html", indexPage{Fields: s.service.Fields()})
}

// handleUploadForm processes the HTML form upload and renders the results page
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	up, err := readUpload(r, "invoice")
	if err != nil {
		var ue *uploadError
		if !errors.As(err, &ue) {
			slog.Error("Error reading upload", "error", err)
			ue = &uploadError{http.StatusInternalServerError, "Error reading file. Please try again."}
		}
		renderTemplate(w, ue.status, "results.html", resultsPage{Error: ue.message})
		return
	}

	invoice, err := s.service.ProcessInvoice(up.filename, up.data, up.contentType)
	if err != nil {
		slog.Error("Error processing invoice", "filename", up.filename, "error", err)
		renderTemplate(w, statusFor(err), "results.html", resultsPage{Error: err.Error()})
		return
	}

	renderTemplate(w, http.StatusOK, "results.html", newResultsPage(invoice))
}

// handleUploadInvoice handles invoice upload through the JSON API
func (s *Server) handleUploadInvoice(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(r, "file", "invoice")
	if err != nil {
		writeUploadError(w, err)
		return
	}

	invoice, err := s.service.ProcessInvoice(up.filename, up.data, up.contentType)
	if err != nil {
		slog.Error("Error processing invoice", "filename", up.filename, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusCreated, invoice)
}

// handleExtractText runs extraction over text in the request body. The body
// is either plain text or {"text": "..."} JSON.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Text is too large. Maximum size is 1MB.")
		return
	}

	text := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		text = req.Text
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, s.service.ExtractText(text))
}

// handleListInvoices returns a list of all invoices
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.service.ListInvoices()
	if err != nil {
		slog.Error("Error listing invoices", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, invoices)
}

// handleGetInvoice returns a single invoice
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.service.GetInvoice(r.PathValue("id"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Invoice not found")
			return
		}
		slog.Error("Error getting invoice", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusOK, invoice)
}

// handleGetInvoiceFile returns the uploaded file of an invoice
func (s *Server) handleGetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetInvoiceFile(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteInvoice deletes an invoice
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteInvoice(r.PathValue("id")); err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Invoice not found")
			return
		}
		slog.Error("Error deleting invoice", "error", err)
		writeError(w, http.StatusInternalServerError, "Error deleting invoice")
		return
	}

	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams all invoices as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.ExportXLSX(&buf); err != nil {
		slog.Error("Error exporting invoices", "error", err)
		writeError(w, http.StatusInternalServerError, "Error exporting invoices")
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	w.Write(buf.Bytes())
}

// newResultsPage lays out an invoice for results.html
func newResultsPage(invoice *Invoice) resultsPage {
	page := resultsPage{Invoice: invoice}
	fields := invoice.Fields
	if fields == nil {
		fields = extraction.NewResult()
	}
	for name, value := range fields.All() {
		page.Rows = append(page.Rows, fieldRow{Name: name, Value: value})
	}
	page.Filled = fields.Filled()
	return page
}
