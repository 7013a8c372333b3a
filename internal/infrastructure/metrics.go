package infrastructure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the report pipeline.
type Metrics struct {
	ReportsBuilt   prometheus.Counter
	ReportFailures *prometheus.CounterVec
	PDFRenders     prometheus.Counter
	BuildDuration  prometheus.Histogram
}

// NewMetrics registers the report pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicpulse_reports_built_total",
			Help: "Number of reports successfully built.",
		}),
		ReportFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicpulse_report_failures_total",
			Help: "Number of failed report builds by stage.",
		}, []string{"stage"}),
		PDFRenders: factory.NewCounter(prometheus.CounterOpts{
			Name: "clinicpulse_pdf_renders_total",
			Help: "Number of PDF exports rendered.",
		}),
		BuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinicpulse_report_build_seconds",
			Help:    "Wall time of a full parse-normalize-build run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// ObserveBuild records the duration of a completed report build.
func (m *Metrics) ObserveBuild(start time.Time) {
	m.BuildDuration.Observe(time.Since(start).Seconds())
}
