package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	identifications *prometheus.CounterVec
	filesListed     prometheus.Histogram
	duration        prometheus.Histogram
	rejected        *prometheus.CounterVec
}

// newMetrics registers collectors on reg so that several servers (and tests)
// can coexist in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		identifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enginesniff",
			Name:      "identifications_total",
			Help:      "Identify requests by winning engine.",
		}, []string{"engine"}),
		filesListed: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "enginesniff",
			Name:      "identify_files",
			Help:      "Number of paths per identify request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "enginesniff",
			Name:      "identify_duration_seconds",
			Help:      "Time spent classifying a listing.",
			Buckets:   prometheus.DefBuckets,
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enginesniff",
			Name:      "identify_rejected_total",
			Help:      "Identify requests rejected before classification, by status code.",
		}, []string{"status"}),
	}
}
