// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Registry *prometheus.Registry

	RecommendationsTotal *prometheus.CounterVec
	DatesSkipped         prometheus.Counter
	RunDuration          prometheus.Histogram
	RowsImported         *prometheus.CounterVec
	RowsRejected         *prometheus.CounterVec
	ErrorsCount          *prometheus.CounterVec

	TrendPercentChange *prometheus.GaugeVec
	RoomsOutOfService  *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry, so several instances
// can coexist in one process (tests, multiple servers).
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RecommendationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Per-date upgrade recommendations produced, by outcome",
		}, []string{"recommendation"}),
		DatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dates_skipped_total",
			Help:      "Stay dates skipped during a run because of date-level errors",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_run_seconds",
			Help:      "Time taken to compute recommendations for a period",
			Buckets:   prometheus.DefBuckets,
		}),
		RowsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Rows imported from uploaded workbooks, by report type",
		}, []string{"report"}),
		RowsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_rejected_total",
			Help:      "Rows skipped during import, by report type",
		}, []string{"report"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		TrendPercentChange: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trend_percent_change",
			Help:      "Room nights over the trend window vs the prior year, in percent",
		}, []string{"hotel"}),
		RoomsOutOfService: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_out_of_service",
			Help:      "Rooms blocked today across all categories",
		}, []string{"hotel"}),
	}
}

// ObserveRun records one recommendation run. Nil-safe.
func (m *Metrics) ObserveRun(started time.Time, yes, no, skipped int) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(time.Since(started).Seconds())
	m.RecommendationsTotal.WithLabelValues("yes").Add(float64(yes))
	m.RecommendationsTotal.WithLabelValues("no").Add(float64(no))
	m.DatesSkipped.Add(float64(skipped))
}

// ObserveImport records one import. Nil-safe.
func (m *Metrics) ObserveImport(report string, imported, rejected int) {
	if m == nil {
		return
	}
	m.RowsImported.WithLabelValues(report).Add(float64(imported))
	m.RowsRejected.WithLabelValues(report).Add(float64(rejected))
}

// Fail counts an error for the operation. Nil-safe.
func (m *Metrics) Fail(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}

// ObserveHotel sets the per-hotel gauges. Nil-safe.
func (m *Metrics) ObserveHotel(hotel string, trendPct float64, outOfService int) {
	if m == nil {
		return
	}
	m.TrendPercentChange.WithLabelValues(hotel).Set(trendPct)
	m.RoomsOutOfService.WithLabelValues(hotel).Set(float64(outOfService))
}

// ForgetHotel drops the gauges of a deleted hotel. Nil-safe.
func (m *Metrics) ForgetHotel(hotel string) {
	if m == nil {
		return
	}
	m.TrendPercentChange.DeleteLabelValues(hotel)
	m.RoomsOutOfService.DeleteLabelValues(hotel)
}
