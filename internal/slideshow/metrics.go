// SPDX-License-Identifier: MIT

package slideshow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollDelaySeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slideshow_poll_delay_seconds",
		Help: "Delay armed for the next playlist poll",
	})

	consecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slideshow_consecutive_fetch_failures",
		Help: "Number of consecutive failed playlist fetches",
	})

	playlistLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slideshow_playlist_length",
		Help: "Number of descriptors in the current playlist",
	})

	fetchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slideshow_fetch_in_flight",
		Help: "Whether a playlist fetch is currently running (0 or 1)",
	})

	advancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slideshow_advances_total",
		Help: "Cursor moves by trigger",
	}, []string{"trigger"}) // trigger=auto|next|previous

	reshufflesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slideshow_reshuffles_total",
		Help: "Number of playlist reshuffles",
	})

	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slideshow_polls_total",
		Help: "Playlist fetches started by trigger",
	}, []string{"trigger"}) // trigger=start|timer|retry
)
