package core

import "github.com/signalsfoundry/gridwalk-simulator/model"

// CollisionSet is a group of live entities found on the same cell.
type CollisionSet struct {
	Cell     model.Position
	Entities []*Entity
}

// Names returns the display names of the set's members in scene order.
func (c CollisionSet) Names() []string {
	names := make([]string, 0, len(c.Entities))
	for _, e := range c.Entities {
		names = append(names, e.Name())
	}
	return names
}

// Collides reports whether a and b are two distinct live entities on the
// same cell. A nil counterpart never collides.
func Collides(a, b *Entity) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if !a.IsAlive() || !b.IsAlive() {
		return false
	}
	return a.Position().Equal(b.Position())
}

// FindCollisions groups the live entities by cell and returns every group
// with two or more members. Grouping reads positions only and kills
// nothing, so the result depends solely on the snapshot passed in. Sets are
// ordered by the scene index of their first member.
func FindCollisions(entities []*Entity) []CollisionSet {
	index := make(map[model.Position]int)
	var groups []CollisionSet
	for _, e := range entities {
		if e == nil || !e.IsAlive() {
			continue
		}
		cell := e.Position()
		i, ok := index[cell]
		if !ok {
			i = len(groups)
			index[cell] = i
			groups = append(groups, CollisionSet{Cell: cell})
		}
		groups[i].Entities = append(groups[i].Entities, e)
	}

	sets := groups[:0]
	for _, g := range groups {
		if len(g.Entities) > 1 {
			sets = append(sets, g)
		}
	}
	return sets
}
