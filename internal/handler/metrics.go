package handler

import (
	"net/http"

	"github.com/tradepost/tradepost/internal/metrics"
)

// MetricsHandler exposes accumulated counters for debugging.
type MetricsHandler struct {
	source metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(source metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{source: source}
}

// Metrics returns the current counter snapshot.
//
// GET /debug/metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}
