package invoice

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Invoices"

// ExportXLSX writes every stored invoice to w as an XLSX workbook: one row
// per invoice, one column per extracted field.
func (s *Service) ExportXLSX(w io.Writer) error {
	start := time.Now()

	invoices, err := s.db.ListInvoices()
	if err != nil {
		return fmt.Errorf("listing invoices: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// rename the default sheet rather than adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	fields := s.engine.Fields()
	headers := append([]string{"ID", "Uploaded", "Filename"}, fields...)
	for i, h := range headers {
		if err := setCell(f, i+1, 1, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for r, inv := range invoices {
		row := r + 2
		values := []any{inv.ID, inv.CreatedAt.Format(time.RFC3339), inv.Filename}
		for _, name := range fields {
			v := ""
			if inv.Fields != nil {
				v = inv.Fields.Get(name)
			}
			values = append(values, v)
		}
		for i, v := range values {
			if err := setCell(f, i+1, row, v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("naming last column: %w", err)
	}
	for _, cw := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 38}, // uuid
		{"B", "C", 24},
		{"D", lastCol, 20},
	} {
		if err := f.SetColWidth(exportSheet, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("sizing columns %s:%s: %w", cw.from, cw.to, err)
		}
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Exported invoices", "rows", len(invoices), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// setCell writes v at the 1-based column and row of the export sheet
func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(exportSheet, cell, v)
}
