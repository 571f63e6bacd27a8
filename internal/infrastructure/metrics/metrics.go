package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors used by the server and the
// todo lifecycle. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	TodosCreated       prometheus.Counter
	TodosCompleted     prometheus.Counter
	TodosReopened      prometheus.Counter
	OccurrencesSpawned *prometheus.CounterVec
	TodosDeleted       prometheus.Counter
}

// New creates and registers all collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TodosCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todos_created_total",
			Help: "Todos created through the API",
		}),
		TodosCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todos_completed_total",
			Help: "Todos transitioned from pending to completed",
		}),
		TodosReopened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todos_reopened_total",
			Help: "Todos transitioned from completed back to pending",
		}),
		OccurrencesSpawned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_occurrences_spawned_total",
				Help: "Next occurrences spawned by completing a recurring todo",
			},
			[]string{"recurrence"},
		),
		TodosDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todos_deleted_total",
			Help: "Todos deleted through the API",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.TodosCreated,
		m.TodosCompleted,
		m.TodosReopened,
		m.OccurrencesSpawned,
		m.TodosDeleted,
	)

	return m
}

func (m *Metrics) TodoCreated() {
	if m != nil {
		m.TodosCreated.Inc()
	}
}

func (m *Metrics) TodoCompleted() {
	if m != nil {
		m.TodosCompleted.Inc()
	}
}

func (m *Metrics) TodoReopened() {
	if m != nil {
		m.TodosReopened.Inc()
	}
}

func (m *Metrics) OccurrenceSpawned(recurrence string) {
	if m != nil {
		m.OccurrencesSpawned.WithLabelValues(recurrence).Inc()
	}
}

func (m *Metrics) TodoDeleted() {
	if m != nil {
		m.TodosDeleted.Inc()
	}
}
