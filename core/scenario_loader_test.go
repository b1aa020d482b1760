package core

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/signalsfoundry/gridwalk-simulator/model"
)

func TestLoadScenarioSharesDefaultStepRange(t *testing.T) {
	const doc = `
step_range: {min_x: -2, max_x: 2, min_y: -1, max_y: 1}
entities:
  - {name: "1", x: 5, y: 5}
  - {name: "2", x: 10, y: 10}
  - name: "3"
    x: -4
    y: 15
    step_range: {min_x: 0, max_x: 1, min_y: 0, max_y: 1}
`
	s := NewScene(constSource(0))
	summary, err := LoadScenario(s, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if want := []string{"1", "2", "3"}; !slices.Equal(summary.Names, want) {
		t.Fatalf("summary.Names = %v, want %v", summary.Names, want)
	}

	entities := s.Entities()
	if entities[0].StepRange() != entities[1].StepRange() {
		t.Fatalf("entities without their own range should share one StepRange")
	}
	if got := *entities[0].StepRange(); got != (model.StepRange{MinX: -2, MaxX: 2, MinY: -1, MaxY: 1}) {
		t.Fatalf("shared StepRange = %v", got)
	}
	if entities[2].StepRange() == entities[0].StepRange() {
		t.Fatalf("entity 3 should have its own StepRange")
	}
	if got := entities[2].Position(); got != model.Clamp(0, 15) {
		t.Fatalf("entity 3 position = %v, want clamped (0, 15)", got)
	}
}

func TestLoadScenarioDefaultsStepRange(t *testing.T) {
	s := NewScene(constSource(0))
	if _, err := LoadScenario(s, strings.NewReader("entities:\n  - {name: a, x: 1, y: 2}\n")); err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if got := *s.Entities()[0].StepRange(); got != *model.DefaultStepRange() {
		t.Fatalf("StepRange = %v, want default", got)
	}
}

func TestLoadScenarioRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "entities:\n  - {name: a, x: 1, y: 2, z: 3}\n",
		"inverted default":  "step_range: {min_x: 1, max_x: 0, min_y: 0, max_y: 1}\nentities: []\n",
		"inverted entity":   "entities:\n  - name: a\n    step_range: {min_x: 0, max_x: 1, min_y: 2, max_y: 1}\n",
		"overflowing range": "step_range: {min_x: -5000000000000000000, max_x: 5000000000000000000, min_y: 0, max_y: 1}\n",
		"not yaml":          "entities: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewScene(constSource(0))
			_, err := LoadScenario(s, strings.NewReader(doc))
			if !errors.Is(err, ErrInvalidScenario) {
				t.Fatalf("LoadScenario error = %v, want ErrInvalidScenario", err)
			}
			if s.Len() != 0 {
				t.Fatalf("scene has %d entities after a failed load, want 0", s.Len())
			}
		})
	}
}

func TestLoadScenarioEmptyDocument(t *testing.T) {
	s := NewScene(constSource(0))
	summary, err := LoadScenario(s, strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadScenario error: %v", err)
	}
	if len(summary.Names) != 0 || s.Len() != 0 {
		t.Fatalf("expected an empty scene, got %d entities", s.Len())
	}
}

func TestLoadScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("entities:\n  - {name: solo, x: 3, y: 3}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := NewScene(constSource(0))
	if _, err := LoadScenarioFile(s, path); err != nil {
		t.Fatalf("LoadScenarioFile error: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if _, err := LoadScenarioFile(s, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
