package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

var (
	// ErrEmptyWorkbook is returned when the sheet has no header row.
	ErrEmptyWorkbook = errors.New("workbook has no rows")
	// ErrUnexpectedHeader is returned when the header row does not match dataset.Columns.
	ErrUnexpectedHeader = errors.New("unexpected header row")
)

const textDateLayout = "2006-01-02 15:04:05"

// ReadFile loads the records stored in path. An empty sheet name selects the
// first sheet.
func ReadFile(path, sheet string) ([]dataset.Record, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	records, err := Decode(in, sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// Decode parses an xlsx workbook produced by Encode.
func Decode(r io.Reader, sheet string) ([]dataset.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		if len(row) < len(dataset.Columns) {
			return nil, fmt.Errorf("row %d: expected %d cells, got %d", line, len(dataset.Columns), len(row))
		}

		date, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, dataset.ColumnDate, err)
		}
		responseTime, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, dataset.ColumnResponseTime, err)
		}

		records = append(records, dataset.Record{
			Date:         date,
			Category:     row[1],
			Status:       row[2],
			ResponseTime: responseTime,
		})
	}
	return records, nil
}

func checkHeader(row []string) error {
	if len(row) < len(dataset.Columns) {
		return fmt.Errorf("%w: got %v, want %v", ErrUnexpectedHeader, row, dataset.Columns)
	}
	for i, want := range dataset.Columns {
		if strings.TrimSpace(row[i]) != want {
			return fmt.Errorf("%w: got %v, want %v", ErrUnexpectedHeader, row, dataset.Columns)
		}
	}
	return nil
}

// parseDate accepts an Excel date serial or, for hand-edited sheets, a
// yyyy-mm-dd hh:mm:ss string. Results are UTC, rounded to the second.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC().Round(time.Second), nil
	}
	t, err := time.Parse(textDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
