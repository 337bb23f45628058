package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/telhawk-systems/apilog-generator/internal/stats"
)

// PrintSummary prints the post-generation statistics for a workbook.
func PrintSummary(path string, s stats.Summary) {
	fmt.Fprintf(Out, "Generated %d records and saved to %s\n", s.Total, path)
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, "Sample statistics:")
	fmt.Fprintf(Out, "Total records: %d\n", s.Total)
	fmt.Fprintf(Out, "Success rate: %.1f%%\n", s.SuccessRate)

	fmt.Fprintln(Out)
	fmt.Fprintln(Out, "Category distribution:")
	categories := NewTable([]string{"category", "percent"})
	for _, c := range s.Categories {
		categories.AddRow([]string{c.Category, strconv.FormatFloat(c.Percent, 'f', 1, 64)})
	}
	categories.Render()

	fmt.Fprintln(Out)
	fmt.Fprintln(Out, "Average response times:")
	means := NewTable([]string{"status", "mean_ms"})
	for _, m := range s.MeanResponseTime {
		means.AddRow([]string{m.Status, strconv.FormatFloat(m.Mean, 'f', 2, 64)})
	}
	means.Render()
}

// PrintReport prints dashboard metrics, a per-day breakdown and, when
// present, the change from the previous period.
func PrintReport(r stats.Report) {
	category := r.Filter.Category
	if category == "" {
		category = "all"
	}
	Info("Category: %s", category)
	if !r.Filter.From.IsZero() || !r.Filter.To.IsZero() {
		Info("Range: %s to %s", day(r.Filter.From), day(r.Filter.To))
	}
	fmt.Fprintln(Out)

	fmt.Fprintf(Out, "Total requests:    %d%s\n", r.Metrics.TotalRequests, change(r.Change, func(c *stats.Comparison) float64 { return c.TotalRequests }))
	fmt.Fprintf(Out, "Avg response time: %.2f ms%s\n", r.Metrics.AvgResponseTime, change(r.Change, func(c *stats.Comparison) float64 { return c.AvgResponseTime }))
	fmt.Fprintf(Out, "Success rate:      %.2f%%%s\n", r.Metrics.SuccessRate, change(r.Change, func(c *stats.Comparison) float64 { return c.SuccessRate }))

	if len(r.Days) == 0 {
		fmt.Fprintln(Out)
		Warn("No records match the filter")
		return
	}

	fmt.Fprintln(Out)
	table := NewTable([]string{"day", "requests", "avg_ms", "success_%"})
	for _, d := range r.Days {
		table.AddRow([]string{
			d.Day,
			strconv.Itoa(d.TotalRequests),
			strconv.FormatFloat(d.AvgResponseTime, 'f', 2, 64),
			strconv.FormatFloat(d.SuccessRate, 'f', 2, 64),
		})
	}
	table.Render()
}

func change(c *stats.Comparison, pick func(*stats.Comparison) float64) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("  (%+.2f%% vs previous period)", pick(c))
}

func day(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format(stats.DayLayout)
}
