// Package spreadsheet reads and writes the api_responses workbook.
//
// The sheet holds one bold header row with the dataset columns followed by one
// row per record. There is no index column. Dates are stored as Excel date
// serials formatted yyyy-mm-dd hh:mm:ss.
package spreadsheet

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// DefaultSheet is the sheet name used when none is configured.
const DefaultSheet = "Sheet1"

const dateFormat = "yyyy-mm-dd hh:mm:ss"

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path, sheet string, records []dataset.Record) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if err := Encode(out, sheet, records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Encode writes records as an xlsx workbook to w.
func Encode(w io.Writer, sheet string, records []dataset.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	format := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	// Column widths must be set before the first row is written.
	if err := sw.SetColWidth(1, 1, 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := sw.SetColWidth(2, len(dataset.Columns), 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	header := make([]any, len(dataset.Columns))
	for i, name := range dataset.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			excelize.Cell{StyleID: dateStyle, Value: r.Date},
			r.Category,
			r.Status,
			r.ResponseTime,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}
