// Package observability wires Prometheus metrics and OpenTelemetry tracing
// for projection runs.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProjectionCollector bundles Prometheus metrics describing projection runs
// and provides a ready-to-serve /metrics handler.
type ProjectionCollector struct {
	gatherer prometheus.Gatherer

	StepsTotal   prometheus.Counter
	StepDuration prometheus.Histogram

	ScenarioAgeGroups prometheus.Gauge
	ScenarioSteps     prometheus.Gauge
	PopulationTotal   prometheus.Gauge
}

// NewProjectionCollector registers projection metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewProjectionCollector(reg prometheus.Registerer) (*ProjectionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "projection_steps_total",
		Help: "Total number of projection steps executed.",
	}), "projection_steps_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "projection_step_duration_seconds",
		Help:    "Wall time per projection step in seconds.",
		Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
	}), "projection_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	ageGroups, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "projection_scenario_age_groups",
		Help: "Number of age groups in the loaded scenario.",
	}), "projection_scenario_age_groups")
	if err != nil {
		return nil, err
	}
	scenarioSteps, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "projection_scenario_steps",
		Help: "Number of time steps in the loaded scenario.",
	}), "projection_scenario_steps")
	if err != nil {
		return nil, err
	}
	popTotal, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "projection_population_total",
		Help: "Total projected population after the most recent completed step.",
	}), "projection_population_total")
	if err != nil {
		return nil, err
	}

	return &ProjectionCollector{
		gatherer:          gatherer,
		StepsTotal:        steps,
		StepDuration:      durations,
		ScenarioAgeGroups: ageGroups,
		ScenarioSteps:     scenarioSteps,
		PopulationTotal:   popTotal,
	}, nil
}

// ObserveStep records one completed projection step and its duration.
func (c *ProjectionCollector) ObserveStep(d time.Duration) {
	if c == nil {
		return
	}
	if c.StepsTotal != nil {
		c.StepsTotal.Inc()
	}
	if c.StepDuration != nil {
		c.StepDuration.Observe(d.Seconds())
	}
}

// SetScenarioShape publishes the dimensions of the loaded scenario.
func (c *ProjectionCollector) SetScenarioShape(nAges, nSteps int) {
	if c == nil {
		return
	}
	if c.ScenarioAgeGroups != nil {
		c.ScenarioAgeGroups.Set(float64(nAges))
	}
	if c.ScenarioSteps != nil {
		c.ScenarioSteps.Set(float64(nSteps))
	}
}

// SetPopulationTotal publishes the current total population.
func (c *ProjectionCollector) SetPopulationTotal(v float64) {
	if c == nil || c.PopulationTotal == nil {
		return
	}
	c.PopulationTotal.Set(v)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ProjectionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
