package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// records nothing.
type Metrics struct {
	PatientsRegistered prometheus.Counter
	Screenings         *prometheus.CounterVec
	AnalysisFailures   *prometheus.CounterVec
	AnalysisDuration   *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "aasha_patients_registered_total",
			Help: "Total number of patients registered at intake",
		}),
		Screenings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aasha_screenings_total",
			Help: "Screenings recorded, by module and risk level",
		}, []string{"module", "risk"}),
		AnalysisFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aasha_analysis_failures_total",
			Help: "Analysis runs that failed or timed out, by module",
		}, []string{"module"}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aasha_analysis_duration_seconds",
			Help:    "Time spent in the analysis capability, by module",
			Buckets: prometheus.DefBuckets,
		}, []string{"module"}),
	}
}

// IncrementPatientsRegistered increments the registered patients counter by 1
func (m *Metrics) IncrementPatientsRegistered() {
	if m == nil {
		return
	}
	m.PatientsRegistered.Inc()
}

// RecordScreening counts a persisted screening.
func (m *Metrics) RecordScreening(module, risk string) {
	if m == nil {
		return
	}
	m.Screenings.WithLabelValues(module, risk).Inc()
}

// RecordAnalysis observes one analysis run and counts it as failed when
// err is non-nil.
func (m *Metrics) RecordAnalysis(module string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.AnalysisDuration.WithLabelValues(module).Observe(took.Seconds())
	if err != nil {
		m.AnalysisFailures.WithLabelValues(module).Inc()
	}
}
