package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the HTTP service.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Analyses        *prometheus.CounterVec
	AnalyzedColumns prometheus.Histogram
	AnalyzedRows    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statgrid_http_requests_total",
				Help: "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statgrid_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statgrid_analyses_total",
				Help: "Table analyses by outcome",
			},
			[]string{"outcome"},
		),
		AnalyzedColumns: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statgrid_analyzed_columns",
			Help:    "Number of columns per analyzed table",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		AnalyzedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statgrid_analyzed_rows",
			Help:    "Number of rows per analyzed table",
			Buckets: prometheus.ExponentialBuckets(10, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.RequestDuration, m.Analyses, m.AnalyzedColumns, m.AnalyzedRows)
	}
	return m
}

// ObserveAnalysis counts one analysis by outcome; "ok" also records the table size.
func (m *Metrics) ObserveAnalysis(outcome string, columns, rows int) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.AnalyzedColumns.Observe(float64(columns))
		m.AnalyzedRows.Observe(float64(rows))
	}
}
