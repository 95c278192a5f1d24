// Package metrics defines the Prometheus collectors for keyphrase
// extraction and an HTTP handler for scraping them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the extraction collectors.
type Metrics struct {
	DocumentsTotal      *prometheus.CounterVec
	CandidatesGenerated *prometheus.CounterVec
	CandidatesFiltered  *prometheus.CounterVec
	KeyphrasesSelected  prometheus.Counter
	ShortfallsTotal     prometheus.Counter
	ExtractionDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpe_documents_total",
				Help: "Documents processed by outcome (ok, error).",
			},
			[]string{"status"},
		),
		CandidatesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpe_candidates_generated_total",
				Help: "Candidate occurrences registered by selection method.",
			},
			[]string{"method"},
		),
		CandidatesFiltered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kpe_candidates_filtered_total",
				Help: "Candidates removed by the filter by rule.",
			},
			[]string{"reason"},
		),
		KeyphrasesSelected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kpe_keyphrases_selected_total",
				Help: "Keyphrases returned by n-best selection.",
			},
		),
		ShortfallsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kpe_selection_shortfalls_total",
				Help: "Selections that returned fewer keyphrases than requested.",
			},
		),
		ExtractionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kpe_extraction_duration_seconds",
				Help:    "Time to extract keyphrases from one document.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
	}

	reg.MustRegister(
		m.DocumentsTotal,
		m.CandidatesGenerated,
		m.CandidatesFiltered,
		m.KeyphrasesSelected,
		m.ShortfallsTotal,
		m.ExtractionDuration,
	)
	return m
}

// ObserveDuration records the time elapsed since start.
func (m *Metrics) ObserveDuration(start time.Time) {
	m.ExtractionDuration.Observe(time.Since(start).Seconds())
}

// Handler returns an HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
