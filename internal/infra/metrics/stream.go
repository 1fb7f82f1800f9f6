package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(streamFramesTotal, streamFramesSkippedTotal, streamFallbacksTotal)
}

var streamFramesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hub_stream_frames_total",
		Help: "Progress frames received per job type.",
	},
	[]string{"type"},
)

var streamFramesSkippedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hub_stream_frames_skipped_total",
		Help: "Frames dropped as keep-alive or malformed, per job type.",
	},
	[]string{"type"},
)

var streamFallbacksTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hub_stream_auth_fallbacks_total",
		Help: "Stream dials that fell back to query-string token auth.",
	},
)

func IncStreamFrame(jobType string) { streamFramesTotal.WithLabelValues(norm(jobType)).Inc() }

func IncFrameSkipped(jobType string) { streamFramesSkippedTotal.WithLabelValues(norm(jobType)).Inc() }

func IncStreamAuthFallback() { streamFallbacksTotal.Inc() }
