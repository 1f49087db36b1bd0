// SPDX-License-Identifier: MIT

package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slideshow_fetch_total",
		Help: "Playlist fetch attempts by outcome",
	}, []string{"outcome"}) // outcome=success|timeout|status|bad_response|unavailable

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slideshow_fetch_duration_seconds",
		Help:    "Playlist fetch latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	unplayableDescriptors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slideshow_fetch_unplayable_descriptors_total",
		Help: "Descriptors received without a network URL (passed through unfiltered)",
	})
)

func observeFetch(outcome string, seconds float64) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(seconds)
}
