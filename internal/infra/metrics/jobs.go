package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(jobsSubmittedTotal, jobsProcessedTotal, jobDurationSeconds, jobsPrunedTotal)
}

var jobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hub_jobs_submitted_total",
		Help: "Total number of jobs accepted by the engine, labeled by type.",
	},
	[]string{"type"},
)

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hub_jobs_processed_total",
		Help: "Total number of jobs that reached a terminal state, labeled by type and status.",
	},
	[]string{"type", "status"}, // 'completed', 'failed'
)

var jobDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "hub_job_duration_seconds",
		Help:    "Wall time from submission to terminal state.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	},
	[]string{"type"},
)

var jobsPrunedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "hub_jobs_pruned_total",
		Help: "Terminal jobs removed from the registry by the janitor.",
	},
)

func IncJobSubmitted(jobType string) {
	jobsSubmittedTotal.WithLabelValues(norm(jobType)).Inc()
}

func IncJobProcessed(jobType, status string) {
	jobsProcessedTotal.WithLabelValues(norm(jobType), norm(status)).Inc()
}

func ObserveJobDuration(jobType string, seconds float64) {
	jobDurationSeconds.WithLabelValues(norm(jobType)).Observe(seconds)
}

func AddJobsPruned(n int) {
	jobsPrunedTotal.Add(float64(n))
}
