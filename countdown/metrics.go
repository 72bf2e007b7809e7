package countdown

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cyclecount"

type metrics struct {
	Ticks     prometheus.Counter
	Wraps     prometheus.Counter
	Resets    prometheus.Counter
	Dropped   prometheus.CounterFunc
	CountLeft prometheus.Gauge
	Active    prometheus.Gauge
}

func newMetrics(lifecycle *Lifecycle) metrics {
	subsystem := "timer"

	return metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total ticks applied to the counter.",
		}),
		Wraps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "Total completed cycles.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "resets_total",
			Help:      "Total manual resets.",
		}),
		Dropped: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "dropped_ticks_total",
			Help:      "Total firings dropped after deactivation.",
		}, func() float64 {
			return float64(lifecycle.Dropped())
		}),
		CountLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "count_left",
			Help:      "Current count left in the cycle.",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "active",
			Help:      "1 when the time source is bound.",
		}),
	}
}

func (m metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Ticks, m.Wraps, m.Resets, m.Dropped, m.CountLeft, m.Active}
}

func (m metrics) observe(s State) {
	m.CountLeft.Set(float64(s.CountLeft))
}
