package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(downloadsTotal, downloadBytesTotal) }

var downloadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hub_downloads_total",
		Help: "Artifact downloads by result.",
	},
	[]string{"result"}, // 'saved', 'failed'
)

var downloadBytesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hub_download_bytes_total",
		Help: "Total artifact bytes written to the download directory.",
	},
)

func IncDownload(result string, bytes int) {
	downloadsTotal.WithLabelValues(norm(result)).Inc()
	if bytes > 0 {
		downloadBytesTotal.Add(float64(bytes))
	}
}
