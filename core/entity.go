package core

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/gridwalk-simulator/model"
)

var (
	ErrNilEntity     = errors.New("entity is nil")
	ErrSceneStarted  = errors.New("scene already started")
	ErrInvalidEntity = errors.New("invalid entity")
)

// Entity is a named actor on the grid. Names are for display only and need
// not be unique.
type Entity struct {
	name  string
	pos   model.Position
	alive bool
	steps *model.StepRange
}

// NewEntity builds a live entity at the clamped position (x, y). The step
// range is validated here so a bad configuration fails before the first tick.
func NewEntity(x, y int, name string, steps *model.StepRange) (*Entity, error) {
	if err := steps.Validate(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidEntity, name, err)
	}
	return &Entity{
		name:  name,
		pos:   model.Clamp(x, y),
		alive: true,
		steps: steps,
	}, nil
}

func (e *Entity) Name() string                { return e.name }
func (e *Entity) Position() model.Position    { return e.pos }
func (e *Entity) StepRange() *model.StepRange { return e.steps }
func (e *Entity) IsAlive() bool               { return e.alive }

// Die marks the entity dead. Calling it again has no effect.
func (e *Entity) Die() {
	e.alive = false
}

// Move takes one random step within the entity's own step range.
func (e *Entity) Move(rng RandomSource) {
	e.MoveWithin(e.steps, rng)
}

// MoveWithin draws an independent delta per axis from r and stores the
// clamped result. A nil or invalid r falls back to the entity's own range.
// It does not check aliveness; the scene only moves live entities.
func (e *Entity) MoveWithin(r *model.StepRange, rng RandomSource) {
	if r != e.steps && r.Validate() != nil {
		r = e.steps
	}
	dx := drawDelta(rng, r.MinX, r.MaxX)
	dy := drawDelta(rng, r.MinY, r.MaxY)
	e.pos = e.pos.Offset(dx, dy)
}

// EntityView is a copy of an entity's observable state.
type EntityView struct {
	Name     string
	Position model.Position
}

// View returns a snapshot of e. Later changes to e do not affect it.
func (e *Entity) View() EntityView {
	return EntityView{Name: e.name, Position: e.pos}
}

func (e *Entity) String() string {
	state := "alive"
	if !e.alive {
		state = "dead"
	}
	return fmt.Sprintf("%s@%v[%s]", e.name, e.pos, state)
}
