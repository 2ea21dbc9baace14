// Package metrics registers Prometheus metrics for the message
// pipeline and the summarization API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the service.
type Metrics struct {
	// Update ingestion metrics
	UpdatesReceived  prometheus.Counter
	MediaJobsStarted *prometheus.CounterVec

	// Pipeline metrics
	DownloadsFailed      prometheus.Counter
	ConversionsFailed    prometheus.Counter
	TranscriptionsTotal  prometheus.Counter
	TranscriptionsFailed prometheus.Counter
	TranscriptionTime    prometheus.Histogram
	ActiveJobs           prometheus.Gauge
	TempFilesOpen        prometheus.Gauge

	// Summarization metrics
	SummariesRequested prometheus.Counter
	SummariesFailed    prometheus.Counter
	SummaryTime        prometheus.Histogram
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics on the given registerer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_updates_received_total",
			Help: "Total number of Bot API updates received",
		}),
		MediaJobsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "konspekt_media_jobs_started_total",
			Help: "Total number of media processing jobs started, by kind",
		}, []string{"kind"}),

		DownloadsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_downloads_failed_total",
			Help: "Total number of failed media downloads",
		}),
		ConversionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_conversions_failed_total",
			Help: "Total number of failed audio conversions",
		}),
		TranscriptionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_transcriptions_total",
			Help: "Total number of transcription runs",
		}),
		TranscriptionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_transcriptions_failed_total",
			Help: "Total number of failed transcription runs",
		}),
		TranscriptionTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "konspekt_transcription_duration_seconds",
			Help:    "Wall time of one transcription run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "konspekt_active_jobs",
			Help: "Current number of in-flight media jobs",
		}),
		TempFilesOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "konspekt_temp_files_open",
			Help: "Current number of transient media files on disk",
		}),

		SummariesRequested: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_summaries_requested_total",
			Help: "Total number of summarize actions received",
		}),
		SummariesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "konspekt_summaries_failed_total",
			Help: "Total number of failed summarize actions",
		}),
		SummaryTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "konspekt_summary_duration_seconds",
			Help:    "Wall time of one summarization API call",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}
