package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/signalsfoundry/gridwalk-simulator/internal/logging"
	"github.com/signalsfoundry/gridwalk-simulator/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/gridwalk-simulator/core"

// SceneView is what observers of a scene depend on. Scene is the only
// production implementation; tests substitute their own.
type SceneView interface {
	Update(ctx context.Context) TickReport
	Subscribe(fn func())
	AliveEntities() []EntityView
}

// TickReport summarises one Update call.
type TickReport struct {
	Tick       uint64
	Collisions []CollisionSet
	Killed     int
	Moved      int
	Alive      int
}

// SceneOption configures optional Scene collaborators.
type SceneOption func(*Scene)

// WithLogger sets the scene logger. A nil logger is replaced by a no-op.
func WithLogger(log logging.Logger) SceneOption {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracer overrides the tracer used for per-tick spans.
func WithTracer(tracer trace.Tracer) SceneOption {
	return func(s *Scene) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithTickObserver registers fn to receive the report of every tick before
// subscribers are notified.
func WithTickObserver(fn func(TickReport)) SceneOption {
	return func(s *Scene) {
		if fn != nil {
			s.tickObservers = append(s.tickObservers, fn)
		}
	}
}

// Scene owns the entities and runs the per-tick cycle: collisions, then
// movement, then notification.
//
// Scene is not safe for concurrent use. The driver calls Update from a
// single goroutine and subscribers run synchronously inside it.
type Scene struct {
	entities []*Entity
	rng      RandomSource

	subscribers   []func()
	tickObservers []func(TickReport)

	log    logging.Logger
	tracer trace.Tracer

	tick uint64
}

// NewScene constructs an empty scene that draws movement from rng.
func NewScene(rng RandomSource, opts ...SceneOption) *Scene {
	s := &Scene{
		rng:    rng,
		log:    logging.Noop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends e to the scene. Entities must be added before the first
// Update.
func (s *Scene) Add(e *Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	if s.tick > 0 {
		return fmt.Errorf("%w: cannot add %q after tick %d", ErrSceneStarted, e.Name(), s.tick)
	}
	if err := e.StepRange().Validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidEntity, e.Name(), err)
	}
	s.entities = append(s.entities, e)
	return nil
}

// Spawn builds an entity and adds it in one call.
func (s *Scene) Spawn(x, y int, name string, steps *model.StepRange) (*Entity, error) {
	e, err := NewEntity(x, y, name, steps)
	if err != nil {
		return nil, err
	}
	if err := s.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Subscribe registers fn to be called at the end of every Update, in
// registration order. Callbacks must not mutate the scene.
func (s *Scene) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.subscribers = append(s.subscribers, fn)
}

// Update runs one tick.
//
// Collision sets are computed from the positions held at the start of the
// tick, and every member of every set dies. Survivors then take one step
// each in insertion order. Dead entities stay where they died.
func (s *Scene) Update(ctx context.Context) TickReport {
	if ctx == nil {
		ctx = context.Background()
	}
	s.tick++
	ctx = logging.ContextWithTick(ctx, s.tick)
	ctx, span := s.tracer.Start(ctx, "scene.update",
		trace.WithAttributes(attribute.Int64("tick", int64(s.tick))))
	defer span.End()
	log := logging.WithTickLogger(ctx, s.log)

	report := TickReport{Tick: s.tick}

	report.Collisions = FindCollisions(s.entities)
	for _, set := range report.Collisions {
		for _, e := range set.Entities {
			e.Die()
			report.Killed++
		}
		span.AddEvent("collision", trace.WithAttributes(
			attribute.Int("cell.x", set.Cell.X),
			attribute.Int("cell.y", set.Cell.Y),
			attribute.StringSlice("entities", set.Names()),
		))
		log.Info(ctx, "entities collided",
			logging.String("cell", set.Cell.String()),
			logging.String("entities", strings.Join(set.Names(), ",")),
		)
	}

	for _, e := range s.entities {
		if !e.IsAlive() {
			continue
		}
		e.Move(s.rng)
		report.Moved++
	}
	report.Alive = report.Moved

	span.SetAttributes(
		attribute.Int("entities.alive", report.Alive),
		attribute.Int("entities.killed", report.Killed),
	)
	log.Debug(ctx, "tick complete",
		logging.Int("alive", report.Alive),
		logging.Int("killed", report.Killed),
	)

	for _, fn := range s.tickObservers {
		fn(report)
	}
	for _, fn := range s.subscribers {
		fn()
	}
	return report
}

// AliveEntities returns snapshots of the live entities in insertion order.
// Observers cannot reach the entities through the result.
func (s *Scene) AliveEntities() []EntityView {
	res := make([]EntityView, 0, len(s.entities))
	for _, e := range s.entities {
		if e.IsAlive() {
			res = append(res, e.View())
		}
	}
	return res
}

// Entities returns every entity, dead ones included, in insertion order.
func (s *Scene) Entities() []*Entity {
	return append([]*Entity(nil), s.entities...)
}

// Len reports the number of entities in the scene.
func (s *Scene) Len() int { return len(s.entities) }

// Ticks reports how many times Update has run.
func (s *Scene) Ticks() uint64 { return s.tick }
