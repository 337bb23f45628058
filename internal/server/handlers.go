package server

import (
	"fmt"
	"net/http"

	"github.com/telhawk-systems/apilog-generator/internal/dataset"
	"github.com/telhawk-systems/apilog-generator/internal/logging"
	"github.com/telhawk-systems/apilog-generator/internal/stats"
)

// Handler serves a loaded dataset. The records are never mutated after
// construction, so handlers share them without locking.
type Handler struct {
	newest  []dataset.Record
	records []dataset.Record
	summary stats.Summary
	logger  *logging.Logger
}

// NewHandler precomputes the newest-first view and summary of records.
func NewHandler(records []dataset.Record, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		newest:  dataset.SortedDesc(records),
		records: records,
		summary: stats.Summarize(records),
		logger:  logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FetchData returns every record, newest first.
func (h *Handler) FetchData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.newest})
}

// Summary returns the post-generation summary statistics.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary)
}

// Report returns dashboard metrics filtered by the category, from and to
// query parameters.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := stats.ParseDay(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid from date %q, want YYYY-MM-DD", q.Get("from")))
		return
	}
	to, err := stats.ParseDay(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid to date %q, want YYYY-MM-DD", q.Get("to")))
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to date is before from date")
		return
	}

	report := stats.BuildReport(h.records, stats.Filter{
		Category: q.Get("category"),
		From:     from,
		To:       to,
	})
	h.logger.DebugContext(r.Context(), "report served",
		"category", report.Filter.Category,
		logging.Records(report.Metrics.TotalRequests),
	)
	writeJSON(w, http.StatusOK, report)
}
