package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity module.
// Tracks registration/login outcomes and critical path durations.
type Metrics struct {
	Registrations    *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	LoginDuration    prometheus.Histogram
	RegisterDuration prometheus.Histogram
}

// New creates a new Metrics instance with all identity module metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_registrations_total",
			Help: "Total number of registration attempts by role and outcome",
		}, []string{"role", "outcome"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		LoginDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "classroom_login_duration_seconds",
			Help:    "Duration of login operations (directory lookup plus credential check)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "classroom_register_duration_seconds",
			Help:    "Duration of registration operations (provisioning plus paired writes)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistration records a registration attempt for a role.
func (m *Metrics) IncrementRegistration(role, outcome string) {
	m.Registrations.WithLabelValues(role, outcome).Inc()
}

// IncrementLogin records a login attempt outcome.
func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveLogin records the duration of a login operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
}

// ObserveRegister records the duration of a registration operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
