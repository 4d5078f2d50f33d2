package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds checkout collectors registered against a single registry.
type Metrics struct {
	// CheckoutsCreated counts checkout construction attempts by result.
	CheckoutsCreated *prometheus.CounterVec
	// ItemsScanned counts scanned items across all sessions.
	ItemsScanned prometheus.Counter
}

// NewMetrics creates and registers checkout collectors. Collectors already
// present in reg are reused, so calling it twice with the same registry is safe.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		CheckoutsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_created_total",
			Help:      "Count of checkout sessions created by outcome.",
		}, []string{"result"}),
		ItemsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_scanned_total",
			Help:      "Total number of scanned items.",
		}),
	}
	mustRegisterCollector(reg, m.CheckoutsCreated, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.CheckoutsCreated = v
		}
	})
	mustRegisterCollector(reg, m.ItemsScanned, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.ItemsScanned = v
		}
	})
	return m
}

// ObserveCreated records a checkout construction outcome.
func (m *Metrics) ObserveCreated(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.CheckoutsCreated.WithLabelValues(result).Inc()
}

// ObserveScan records a scanned item.
func (m *Metrics) ObserveScan() {
	if m == nil {
		return
	}
	m.ItemsScanned.Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register checkout metric: %w", err))
	}
}
