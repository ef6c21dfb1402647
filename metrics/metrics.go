// Package metrics exposes calltrace activity as Prometheus metrics.
package metrics

import (
	"github.com/Station-Manager/calltrace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "calltrace"

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

// Collector implements calltrace.Observer on top of Prometheus metrics.
type Collector struct {
	registered   *prometheus.CounterVec
	calls        *prometheus.CounterVec
	sinkFailures prometheus.Counter
	transitions  *prometheus.CounterVec
	breakerOpen  prometheus.Gauge
}

var _ calltrace.Observer = (*Collector)(nil)

// NewCollector registers the calltrace metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		// registered counts objects recorded by a registrar, per scope.
		registered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registered_objects_total",
			Help:      "Total number of managed objects recorded with a logging marker",
		}, []string{"scope"}),

		// calls counts traced calls by type, method and outcome.
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traced_calls_total",
			Help:      "Total number of calls dispatched through a logging proxy",
		}, []string{"type", "method", "outcome"}),

		sinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Total number of log entries the sink failed to accept",
		}),

		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_breaker_transitions_total",
			Help:      "Total number of sink circuit breaker state changes",
		}, []string{"from", "to"}),

		// breakerOpen is 1 while the sink breaker rejects entries.
		breakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sink_breaker_open",
			Help:      "Whether the sink circuit breaker is open (1) or not (0)",
		}),
	}
}

func (c *Collector) ObjectRegistered(scope calltrace.Scope, _ string) {
	c.registered.WithLabelValues(string(scope)).Inc()
}

func (c *Collector) CallTraced(typeName, method string, failed bool) {
	outcome := outcomeOK
	if failed {
		outcome = outcomeFailed
	}
	c.calls.WithLabelValues(typeName, method, outcome).Inc()
}

func (c *Collector) SinkFailed() {
	c.sinkFailures.Inc()
}

func (c *Collector) SinkBreakerChanged(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
	if to == "open" {
		c.breakerOpen.Set(1)
	} else {
		c.breakerOpen.Set(0)
	}
}
