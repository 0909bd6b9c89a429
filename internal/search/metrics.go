package search

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of search stores.
type Metrics struct {
	documents prometheus.Gauge
	queries   *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered by another store are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oasdoc",
			Subsystem: "search",
			Name:      "documents",
			Help:      "Number of documents in the search index",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oasdoc",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total search queries by status",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oasdoc",
			Subsystem: "search",
			Name:      "query_duration_seconds",
			Help:      "Time spent answering search queries, queueing included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.documents, err = register(reg, m.documents); err != nil {
		return nil, err
	}
	if m.queries, err = register(reg, m.queries); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) setDocuments(n int) {
	if m == nil {
		return
	}
	m.documents.Set(float64(n))
}

func (m *Metrics) observeQuery(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
}
