package stats

import (
	"slices"
	"strings"
	"time"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// DayLayout is the calendar-day format used by filters and day buckets.
const DayLayout = "2006-01-02"

// Filter narrows the records a report covers. Zero values mean unbounded;
// To is inclusive of its whole day.
type Filter struct {
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	From     time.Time `json:"from,omitzero" yaml:"from,omitempty"`
	To       time.Time `json:"to,omitzero" yaml:"to,omitempty"`
}

// Metrics are the dashboard headline numbers.
type Metrics struct {
	TotalRequests   int     `json:"total_requests" yaml:"total_requests"`
	AvgResponseTime float64 `json:"avg_response_time" yaml:"avg_response_time"`
	SuccessRate     float64 `json:"success_rate" yaml:"success_rate"` // percent
}

// DayMetrics are Metrics for one UTC calendar day.
type DayMetrics struct {
	Day string `json:"day" yaml:"day"`
	Metrics
}

// Comparison holds percent changes from a previous period to the current one.
type Comparison struct {
	TotalRequests   float64 `json:"total_requests" yaml:"total_requests"`
	AvgResponseTime float64 `json:"avg_response_time" yaml:"avg_response_time"`
	SuccessRate     float64 `json:"success_rate" yaml:"success_rate"`
}

// Report is the read-back view of a workbook.
type Report struct {
	Filter     Filter       `json:"filter" yaml:"filter"`
	Categories []string     `json:"categories" yaml:"categories"`
	Metrics    Metrics      `json:"metrics" yaml:"metrics"`
	Days       []DayMetrics `json:"days" yaml:"days"`
	Previous   *Metrics     `json:"previous,omitempty" yaml:"previous,omitempty"`
	Change     *Comparison  `json:"change,omitempty" yaml:"change,omitempty"`
}

// BuildReport computes metrics for the records matching filter. When both
// bounds are set, the same-length period immediately before From is
// computed too and compared against.
func BuildReport(records []dataset.Record, filter Filter) Report {
	matched := Apply(records, filter)

	r := Report{
		Filter:     filter,
		Categories: categoriesOf(records),
		Metrics:    ComputeMetrics(matched),
		Days:       byDay(matched),
	}

	if !filter.From.IsZero() && !filter.To.IsZero() {
		span := endOf(filter.To).Sub(filter.From)
		prevFilter := Filter{
			Category: filter.Category,
			From:     filter.From.Add(-span),
			To:       filter.From,
		}
		prev := ComputeMetrics(applyHalfOpen(records, prevFilter))
		change := Compare(r.Metrics, prev)
		r.Previous = &prev
		r.Change = &change
	}

	return r
}

// Apply returns the records matching filter, in input order.
func Apply(records []dataset.Record, filter Filter) []dataset.Record {
	f := filter
	if !f.To.IsZero() {
		f.To = endOf(f.To)
	}
	return applyHalfOpen(records, f)
}

// applyHalfOpen matches From <= date < To.
func applyHalfOpen(records []dataset.Record, f Filter) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if !matchesCategory(r.Category, f.Category) {
			continue
		}
		if !f.From.IsZero() && r.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !r.Date.Before(f.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesCategory(category, want string) bool {
	return want == "" || strings.EqualFold(want, "all") || strings.EqualFold(category, want)
}

// endOf returns the start of the day after t's UTC day.
func endOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// ComputeMetrics returns the headline metrics for records.
func ComputeMetrics(records []dataset.Record) Metrics {
	if len(records) == 0 {
		return Metrics{}
	}

	var sum float64
	successes := 0
	for _, r := range records {
		sum += r.ResponseTime
		if IsSuccess(r.Status) {
			successes++
		}
	}

	n := float64(len(records))
	return Metrics{
		TotalRequests:   len(records),
		AvgResponseTime: round(sum/n, 2),
		SuccessRate:     round(float64(successes)/n*100, 2),
	}
}

// IsSuccess reports whether status counts as a successful call.
func IsSuccess(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "200", "ok":
		return true
	}
	return false
}

// Compare returns percent changes from previous to current. A zero previous
// value yields a zero change.
func Compare(current, previous Metrics) Comparison {
	return Comparison{
		TotalRequests:   percentChange(float64(current.TotalRequests), float64(previous.TotalRequests)),
		AvgResponseTime: percentChange(current.AvgResponseTime, previous.AvgResponseTime),
		SuccessRate:     percentChange(current.SuccessRate, previous.SuccessRate),
	}
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round((current-previous)/previous*100, 2)
}

func byDay(records []dataset.Record) []DayMetrics {
	buckets := make(map[string][]dataset.Record)
	for _, r := range records {
		day := r.Date.UTC().Format(DayLayout)
		buckets[day] = append(buckets[day], r)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	slices.Sort(days)

	out := make([]DayMetrics, 0, len(days))
	for _, day := range days {
		out = append(out, DayMetrics{Day: day, Metrics: ComputeMetrics(buckets[day])})
	}
	return out
}

func categoriesOf(records []dataset.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	slices.Sort(out)
	return out
}

// ParseDay parses a YYYY-MM-DD filter bound. Empty input yields the zero time.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DayLayout, s)
}
