// Package metrics records recommender activity in a prometheus registry.
// A short-lived CLI cannot be scraped, so the registry is written to a
// node_exporter textfile-collector file when a command exits.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abhisek/strandwise/internal/strand"
)

// Metrics holds the recommender collectors.
type Metrics struct {
	reg *prometheus.Registry

	Predictions       *prometheus.CounterVec
	PredictionTies    prometheus.Counter
	Selections        *prometheus.CounterVec
	SelectionDuration prometheus.Histogram
	SelectedK         prometheus.Gauge
	SelectionAccuracy prometheus.Gauge
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strandwise_predictions_total",
				Help: "Recommendations made, by recommended strand",
			},
			[]string{"strand"},
		),
		PredictionTies: f.NewCounter(
			prometheus.CounterOpts{
				Name: "strandwise_prediction_ties_total",
				Help: "Recommendations settled by the distance-weighted tie break",
			},
		),
		Selections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strandwise_model_selections_total",
				Help: "Model selections, by outcome (cv or fallback)",
			},
			[]string{"outcome"},
		),
		SelectionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strandwise_model_selection_duration_seconds",
				Help:    "Wall time of cross-validated K searches",
				Buckets: prometheus.DefBuckets,
			},
		),
		SelectedK: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "strandwise_selected_k",
				Help: "Neighbor count chosen by the most recent selection",
			},
		),
		SelectionAccuracy: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "strandwise_selection_accuracy",
				Help: "Mean cross-validated accuracy of the most recent selection",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// RecordPrediction counts one recommendation.
func (m *Metrics) RecordPrediction(l strand.Label, tie bool) {
	m.Predictions.WithLabelValues(string(l)).Inc()
	if tie {
		m.PredictionTies.Inc()
	}
}

// RecordSelection records a finished K search. Fallbacks skip the duration.
func (m *Metrics) RecordSelection(k int, accuracy float64, fallback bool, took time.Duration) {
	outcome := "cv"
	if fallback {
		outcome = "fallback"
	} else {
		m.SelectionDuration.Observe(took.Seconds())
	}
	m.Selections.WithLabelValues(outcome).Inc()
	m.SelectedK.Set(float64(k))
	m.SelectionAccuracy.Set(accuracy)
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
