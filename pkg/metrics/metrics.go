package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	era5 = "era5d"

	jobsSubmittedTotal = "jobs_submitted_total"
	jobsFinishedTotal  = "jobs_finished_total"
	retrievalSeconds   = "retrieval_duration_seconds"
	gridParsedTotal    = "grid_files_parsed_total"

	// Labels
	statusLabel  = "status"
	datasetLabel = "dataset"
	resultLabel  = "result"
)

var jobsSubmittedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: era5,
		Name:      jobsSubmittedTotal,
		Help:      "number of retrieval jobs accepted, by dataset",
	},
	[]string{datasetLabel},
)

var jobsFinishedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: era5,
		Name:      jobsFinishedTotal,
		Help:      "number of retrieval jobs reaching an end state, by status",
	},
	[]string{statusLabel},
)

var retrievalLatencyMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: era5,
		Name:      retrievalSeconds,
		Help:      "time spent waiting on the archive for one retrieval",
		Buckets:   []float64{10, 60, 300, 900, 1800, 3600, 7200, 14400},
	},
	[]string{statusLabel},
)

var gridParsedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: era5,
		Name:      gridParsedTotal,
		Help:      "number of grid files inspected, by result",
	},
	[]string{resultLabel},
)

func IncreaseJobsSubmitted(dataset string) {
	jobsSubmittedMetric.With(prometheus.Labels{datasetLabel: dataset}).Inc()
}

func IncreaseJobsFinished(status string) {
	jobsFinishedMetric.With(prometheus.Labels{statusLabel: status}).Inc()
}

func ObserveRetrieval(status string, seconds float64) {
	retrievalLatencyMetric.With(prometheus.Labels{statusLabel: status}).Observe(seconds)
}

func IncreaseGridParsed(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	gridParsedMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsSubmittedMetric)
	prometheus.MustRegister(jobsFinishedMetric)
	prometheus.MustRegister(retrievalLatencyMetric)
	prometheus.MustRegister(gridParsedMetric)
}
