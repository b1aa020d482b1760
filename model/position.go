package model

import (
	"fmt"
	"math"
)

// Position is a cell on the simulation grid. Both coordinates are
// non-negative; there is no upper bound.
//
// Position is a value type. Moving an entity means storing a new Position,
// never editing the coordinates of an existing one.
type Position struct {
	X int
	Y int
}

// Clamp builds a Position, replacing any negative coordinate with 0.
// All positions in the simulator are constructed through Clamp.
func Clamp(x, y int) Position {
	return Position{X: max(0, x), Y: max(0, y)}
}

// Equal reports whether p and other address the same cell.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Offset returns the clamped position reached by moving p by (dx, dy).
// Coordinates saturate at math.MaxInt instead of wrapping.
func (p Position) Offset(dx, dy int) Position {
	return Clamp(addSaturated(p.X, dx), addSaturated(p.Y, dy))
}

func addSaturated(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
