package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the classroom module.
// Tracks lifecycle counts, join outcomes and critical path durations.
type Metrics struct {
	ClassesCreated prometheus.Counter
	ClassesRenamed prometheus.Counter
	ClassesDeleted prometheus.Counter
	Joins          *prometheus.CounterVec
	CreateDuration prometheus.Histogram
	JoinDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all classroom module metrics registered.
func New() *Metrics {
	return &Metrics{
		ClassesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "classroom_classes_created_total",
			Help: "Total number of classrooms created",
		}),
		ClassesRenamed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "classroom_classes_renamed_total",
			Help: "Total number of classroom renames",
		}),
		ClassesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "classroom_classes_deleted_total",
			Help: "Total number of classrooms deleted",
		}),
		Joins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "classroom_joins_total",
			Help: "Total number of join attempts by outcome",
		}, []string{"outcome"}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "classroom_create_duration_seconds",
			Help:    "Duration of classroom creation (code allocation plus paired writes)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		JoinDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "classroom_join_duration_seconds",
			Help:    "Duration of join operations (code resolution plus paired writes)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementJoin records a join attempt outcome.
func (m *Metrics) IncrementJoin(outcome string) {
	m.Joins.WithLabelValues(outcome).Inc()
}

// ObserveCreate records the duration of a classroom creation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveJoin records the duration of a join operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveJoin(start time.Time) {
	m.JoinDuration.Observe(time.Since(start).Seconds())
}
