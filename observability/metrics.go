// Package observability expose les métriques Prometheus de l'application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"carbon-track/services/recommend"
	"carbon-track/services/records"
)

var (
	recordsAdded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_track",
		Subsystem: "records",
		Name:      "added_total",
		Help:      "Emission records added, by category.",
	}, []string{"category"})
	recordsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbon_track",
		Subsystem: "records",
		Name:      "deleted_total",
		Help:      "Emission records deleted.",
	})
	recordsCleared = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbon_track",
		Subsystem: "records",
		Name:      "cleared_total",
		Help:      "Record collections cleared on logout.",
	})
	storageFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "carbon_track",
		Subsystem: "records",
		Name:      "storage_fallbacks_total",
		Help:      "Collections loaded empty because the stored value was unreadable.",
	})
	recommendationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_track",
		Subsystem: "recommendations",
		Name:      "requests_total",
		Help:      "Recommendation requests, by outcome.",
	}, []string{"outcome"})
	recommendationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "carbon_track",
		Subsystem: "recommendations",
		Name:      "duration_seconds",
		Help:      "Latency of calls to the recommendation collaborator.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	})
)

func init() {
	prometheus.MustRegister(
		recordsAdded,
		recordsDeleted,
		recordsCleared,
		storageFallbacks,
		recommendationOutcomes,
		recommendationLatency,
	)
}

// ObserveRecords est un abonné du store qui alimente les compteurs.
func ObserveRecords(ev records.Event) {
	switch ev.Kind {
	case records.EventAdded:
		if ev.Record != nil {
			recordsAdded.WithLabelValues(string(ev.Record.Category)).Inc()
		}
	case records.EventDeleted:
		recordsDeleted.Inc()
	case records.EventCleared:
		recordsCleared.Inc()
	case records.EventLoaded:
		if ev.Warning != nil {
			storageFallbacks.Inc()
		}
	}
}

// ObserveRecommendation enregistre l'issue d'une demande de recommandation.
func ObserveRecommendation(o recommend.Outcome, d time.Duration) {
	recommendationOutcomes.WithLabelValues(string(o)).Inc()
	if o != recommend.OutcomeNoData {
		recommendationLatency.Observe(d.Seconds())
	}
}
