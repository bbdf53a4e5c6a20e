// Package observability bundles Prometheus metrics for the transient
// solver loop.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SolverCollector holds the per-step solver metrics.
type SolverCollector struct {
	gatherer prometheus.Gatherer

	StepsTotal   prometheus.Counter
	Keff         prometheus.Gauge
	CorePower    prometheus.Gauge
	StepDuration prometheus.Histogram
}

// NewSolverCollector registers the solver metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Re-registration of an identical collector is tolerated.
func NewSolverCollector(reg prometheus.Registerer) (*SolverCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nemdiff_steps_total",
		Help: "Completed transient steps.",
	}))
	if err != nil {
		return nil, err
	}
	keff, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nemdiff_keff",
		Help: "Effective multiplication factor of the latest eigensolve.",
	}))
	if err != nil {
		return nil, err
	}
	power, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nemdiff_core_power",
		Help: "Core-integrated flux of the latest step.",
	}))
	if err != nil {
		return nil, err
	}
	dur, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nemdiff_step_duration_seconds",
		Help:    "Wall-clock duration of one transient step.",
		Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
	}))
	if err != nil {
		return nil, err
	}

	return &SolverCollector{
		gatherer:     gatherer,
		StepsTotal:   steps,
		Keff:         keff,
		CorePower:    power,
		StepDuration: dur,
	}, nil
}

// ObserveStep records the outcome of one completed step.
func (c *SolverCollector) ObserveStep(keff, corePower float64, d time.Duration) {
	if c == nil {
		return
	}
	c.StepsTotal.Inc()
	c.Keff.Set(keff)
	c.CorePower.Set(corePower)
	c.StepDuration.Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SolverCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}
