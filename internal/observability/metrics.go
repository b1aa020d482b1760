package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/signalsfoundry/gridwalk-simulator/core"
)

// SceneCollector bundles Prometheus metrics for the scene update cycle.
type SceneCollector struct {
	gatherer prometheus.Gatherer

	Ticks          prometheus.Counter
	Deaths         prometheus.Counter
	CollisionSets  prometheus.Counter
	AliveEntities  prometheus.Gauge
	UpdateDuration prometheus.Histogram
}

// NewSceneCollector registers scene metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil. Metrics that are
// already registered with a compatible type are reused.
func NewSceneCollector(reg prometheus.Registerer) (*SceneCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scene_ticks_total",
		Help: "Number of completed scene updates.",
	}), "scene_ticks_total")
	if err != nil {
		return nil, err
	}
	deaths, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scene_collisions_total",
		Help: "Number of entities killed by collisions.",
	}), "scene_collisions_total")
	if err != nil {
		return nil, err
	}
	sets, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scene_collision_sets_total",
		Help: "Number of cells on which two or more live entities met.",
	}), "scene_collision_sets_total")
	if err != nil {
		return nil, err
	}
	alive, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scene_entities_alive",
		Help: "Live entities after the most recent update.",
	}), "scene_entities_alive")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scene_update_duration_seconds",
		Help:    "Wall-clock duration of a scene update including notification.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}), "scene_update_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SceneCollector{
		gatherer:       gatherer,
		Ticks:          ticks,
		Deaths:         deaths,
		CollisionSets:  sets,
		AliveEntities:  alive,
		UpdateDuration: duration,
	}, nil
}

// ObserveTick records one tick report. It matches the signature expected by
// core.WithTickObserver.
func (c *SceneCollector) ObserveTick(r core.TickReport) {
	if c == nil {
		return
	}
	if c.Ticks != nil {
		c.Ticks.Inc()
	}
	if c.Deaths != nil {
		c.Deaths.Add(float64(r.Killed))
	}
	if c.CollisionSets != nil {
		c.CollisionSets.Add(float64(len(r.Collisions)))
	}
	if c.AliveEntities != nil {
		c.AliveEntities.Set(float64(r.Alive))
	}
}

// ObserveUpdate records how long a full update took.
func (c *SceneCollector) ObserveUpdate(d time.Duration) {
	if c == nil || c.UpdateDuration == nil {
		return
	}
	c.UpdateDuration.Observe(d.Seconds())
}

// TimedStepper times every Update of the wrapped stepper.
type TimedStepper struct {
	next interface {
		Update(ctx context.Context) core.TickReport
	}
	collector *SceneCollector
}

// Instrument wraps s so each update's duration lands in UpdateDuration.
func (c *SceneCollector) Instrument(s interface {
	Update(ctx context.Context) core.TickReport
}) *TimedStepper {
	return &TimedStepper{next: s, collector: c}
}

func (t *TimedStepper) Update(ctx context.Context) core.TickReport {
	start := time.Now()
	report := t.next.Update(ctx)
	t.collector.ObserveUpdate(time.Since(start))
	return report
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SceneCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SceneCollector) Handler() http.Handler {
	gatherer := c.Gatherer()
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
