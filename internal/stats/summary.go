// Package stats computes descriptive statistics over generated records.
package stats

import (
	"math"
	"slices"
	"strings"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
)

// Summary is the post-generation report printed after a run.
type Summary struct {
	Total            int          `json:"total" yaml:"total"`
	SuccessRate      float64      `json:"success_rate" yaml:"success_rate"` // percent, one decimal
	Categories       []Share      `json:"categories" yaml:"categories"`
	MeanResponseTime []StatusMean `json:"mean_response_time" yaml:"mean_response_time"`
}

// Share is one category's slice of the dataset.
type Share struct {
	Category string  `json:"category" yaml:"category"`
	Count    int     `json:"count" yaml:"count"`
	Percent  float64 `json:"percent" yaml:"percent"` // fraction rounded to 3 places, times 100
}

// StatusMean is the mean response time of one status group.
type StatusMean struct {
	Status string  `json:"status" yaml:"status"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"` // milliseconds, two decimals
}

// Summarize computes the summary for records. Categories are ordered by
// count descending (first appearance breaks ties), statuses by name.
func Summarize(records []dataset.Record) Summary {
	s := Summary{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	successes := 0
	categoryCounts := make(map[string]int)
	var categoryOrder []string
	statusSums := make(map[string]float64)
	statusCounts := make(map[string]int)

	for _, r := range records {
		if r.Status == "success" {
			successes++
		}
		if _, seen := categoryCounts[r.Category]; !seen {
			categoryOrder = append(categoryOrder, r.Category)
		}
		categoryCounts[r.Category]++
		statusSums[r.Status] += r.ResponseTime
		statusCounts[r.Status]++
	}

	total := float64(len(records))
	s.SuccessRate = round(float64(successes)/total*100, 1)

	slices.SortStableFunc(categoryOrder, func(a, b string) int {
		return categoryCounts[b] - categoryCounts[a]
	})
	for _, c := range categoryOrder {
		frac := round(float64(categoryCounts[c])/total, 3)
		s.Categories = append(s.Categories, Share{
			Category: c,
			Count:    categoryCounts[c],
			Percent:  round(frac*100, 1),
		})
	}

	statuses := make([]string, 0, len(statusCounts))
	for st := range statusCounts {
		statuses = append(statuses, st)
	}
	slices.Sort(statuses)
	for _, st := range statuses {
		s.MeanResponseTime = append(s.MeanResponseTime, StatusMean{
			Status: st,
			Count:  statusCounts[st],
			Mean:   round(statusSums[st]/float64(statusCounts[st]), 2),
		})
	}

	return s
}

// MeanFor returns the mean response time for status, if present.
func (s Summary) MeanFor(status string) (float64, bool) {
	for _, m := range s.MeanResponseTime {
		if strings.EqualFold(m.Status, status) {
			return m.Mean, true
		}
	}
	return 0, false
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
