// Package export writes operator tables as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/reviewfunnel/funnel/domain/service"
)

// ContentTypeXLSX is the MIME type of .xlsx workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// XLSXWriter writes a table as a single-sheet workbook with a bold, frozen
// header row.
type XLSXWriter struct{}

// NewXLSXWriter creates an XLSXWriter.
func NewXLSXWriter() XLSXWriter {
	return XLSXWriter{}
}

// ContentType returns the .xlsx MIME type.
func (XLSXWriter) ContentType() string { return ContentTypeXLSX }

// Write encodes t to w.
func (XLSXWriter) Write(w io.Writer, t service.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	sheet := t.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(t.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(t.Header))
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
