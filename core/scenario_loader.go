package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/signalsfoundry/gridwalk-simulator/model"
)

// ErrInvalidScenario wraps every structural problem found in a scenario file.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a summary of what was loaded into a scene.
type Scenario struct {
	Names []string
}

// internal YAML shapes, unexported so the file format can evolve.
type scenarioYAML struct {
	StepRange *stepRangeYAML `yaml:"step_range"`
	Entities  []entityYAML   `yaml:"entities"`
}

type stepRangeYAML struct {
	MinX int `yaml:"min_x"`
	MaxX int `yaml:"max_x"`
	MinY int `yaml:"min_y"`
	MaxY int `yaml:"max_y"`
}

type entityYAML struct {
	Name      string         `yaml:"name"`
	X         int            `yaml:"x"`
	Y         int            `yaml:"y"`
	StepRange *stepRangeYAML `yaml:"step_range"` // optional; falls back to the scenario default
}

func (r *stepRangeYAML) toModel() *model.StepRange {
	return &model.StepRange{MinX: r.MinX, MaxX: r.MaxX, MinY: r.MinY, MaxY: r.MaxY}
}

// LoadScenario reads a YAML scenario from r and adds its entities to the
// scene in file order. Entities without their own step_range share one
// default StepRange: the file's top-level step_range, or
// model.DefaultStepRange when that is absent.
//
// Unknown keys and invalid step ranges are rejected before any entity is
// added.
func LoadScenario(scene *Scene, r io.Reader) (*Scenario, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: scene is nil", ErrInvalidScenario)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var raw scenarioYAML
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: decode: %w", ErrInvalidScenario, err)
		}
	}

	shared := model.DefaultStepRange()
	if raw.StepRange != nil {
		shared = raw.StepRange.toModel()
	}
	if err := shared.Validate(); err != nil {
		return nil, fmt.Errorf("%w: default step_range: %w", ErrInvalidScenario, err)
	}

	entities := make([]*Entity, 0, len(raw.Entities))
	for i, ey := range raw.Entities {
		steps := shared
		if ey.StepRange != nil {
			steps = ey.StepRange.toModel()
		}
		e, err := NewEntity(ey.X, ey.Y, ey.Name, steps)
		if err != nil {
			return nil, fmt.Errorf("%w: entities[%d]: %w", ErrInvalidScenario, i, err)
		}
		entities = append(entities, e)
	}

	summary := &Scenario{Names: make([]string, 0, len(entities))}
	for _, e := range entities {
		if err := scene.Add(e); err != nil {
			return nil, err
		}
		summary.Names = append(summary.Names, e.Name())
	}
	return summary, nil
}

// LoadScenarioFile opens path and calls LoadScenario.
func LoadScenarioFile(scene *Scene, path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario %q: %w", path, err)
	}
	defer f.Close()
	return LoadScenario(scene, f)
}

// DefaultScenario adds the three entities the simulator starts with when no
// scenario file is given. They share one default step range.
func DefaultScenario(scene *Scene) (*Scenario, error) {
	steps := model.DefaultStepRange()
	summary := &Scenario{}
	for _, spec := range []struct {
		x, y int
		name string
	}{
		{5, 5, "1"},
		{10, 10, "2"},
		{15, 15, "3"},
	} {
		if _, err := scene.Spawn(spec.x, spec.y, spec.name, steps); err != nil {
			return nil, err
		}
		summary.Names = append(summary.Names, spec.name)
	}
	return summary, nil
}
