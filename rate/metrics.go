package rate

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records estimator activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	estimates *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	lastRate  *prometheus.GaugeVec
	checks    *prometheus.CounterVec
}

// NewMetrics registers the estimator metrics on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genlender_rate_estimates_total",
				Help: "Total number of annual rate estimates by simulate flag and status",
			},
			[]string{"simulate", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genlender_rate_source_duration_seconds",
				Help:    "Block share source latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"simulate"},
		),
		lastRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "genlender_rate_last_annualized",
				Help: "Most recent annualized rate as a fraction",
			},
			[]string{"simulate"},
		),
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genlender_rate_checks_total",
				Help: "Total number of diminishing returns checks by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) observeEstimate(simulate bool, err error, took time.Duration) {
	if m == nil {
		return
	}
	label := strconv.FormatBool(simulate)
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.estimates.WithLabelValues(label, status).Inc()
	m.duration.WithLabelValues(label).Observe(took.Seconds())
}

func (m *Metrics) setLastRate(simulate bool, r *AnnualizedRate) {
	if m == nil {
		return
	}
	v, _ := r.Decimal().Float64()
	m.lastRate.WithLabelValues(strconv.FormatBool(simulate)).Set(v)
}

func (m *Metrics) observeCheck(err error) {
	if m == nil {
		return
	}
	result := "pass"
	switch Code(err) {
	case "":
		if err != nil {
			result = "error"
		}
	case ErrCodeInvariant:
		result = "violated"
	default:
		result = "error"
	}
	m.checks.WithLabelValues(result).Inc()
}
