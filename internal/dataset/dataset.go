// Package dataset holds the in-memory shape of a generated API response log.
package dataset

import (
	"slices"
	"time"
)

// Column names, in spreadsheet order.
const (
	ColumnDate         = "date"
	ColumnCategory     = "category"
	ColumnStatus       = "status"
	ColumnResponseTime = "responseTime"
)

// Columns is the header row of every serialized dataset.
var Columns = []string{ColumnDate, ColumnCategory, ColumnStatus, ColumnResponseTime}

// Record is one synthetic API call observation.
type Record struct {
	Date         time.Time `json:"date"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	ResponseTime float64   `json:"responseTime"` // milliseconds
}

// Dataset is a generated run: the records plus the parameters that produced them.
type Dataset struct {
	RunID       string    `json:"run_id"`
	Seed        int64     `json:"seed"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     []Record  `json:"records"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// SortByDate orders records ascending by date. Records with equal dates keep
// their generation order.
func SortByDate(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
}

// SortedDesc returns a copy of records ordered newest first, ties in reverse
// generation order.
func SortedDesc(records []Record) []Record {
	out := slices.Clone(records)
	SortByDate(out)
	slices.Reverse(out)
	return out
}

// IsSorted reports whether records are non-decreasing by date.
func IsSorted(records []Record) bool {
	return slices.IsSortedFunc(records, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
}
