package waymap

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// AssignIDs gives the map and every waypoint and edge without an ID a
// fresh UUID, and stamps each waypoint with the map ID.
// Edge endpoints and Next lists that referred to an empty ID cannot be
// resolved afterwards, so callers assign IDs before wiring edges.
func AssignIDs(m *Map) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for _, w := range m.Waypoints {
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		w.MapID = m.ID
	}
	for i := range m.Edges {
		if m.Edges[i].ID == "" {
			m.Edges[i].ID = uuid.NewString()
		}
	}
}

// Validate checks that m is a well-formed layered graph: coordinates are
// unique and inside the grid, every edge joins known waypoints on
// consecutive layers, and each waypoint's Next list matches its edges.
// Layering implies the graph is acyclic.
func Validate(m *Map) error {
	if m.Layers < 1 || m.Slots < 1 {
		return fmt.Errorf("%w: grid is %dx%d", ErrNotLayered, m.Layers, m.Slots)
	}

	byID := make(map[string]*Waypoint, len(m.Waypoints))
	seen := make(map[Coord]string, len(m.Waypoints))
	for _, w := range m.Waypoints {
		if w.Layer < 0 || w.Layer >= m.Layers || w.Slot < 0 || w.Slot >= m.Slots {
			return fmt.Errorf("%w: waypoint %s at (%d,%d) is outside the grid", ErrNotLayered, w.ID, w.Layer, w.Slot)
		}
		if other, ok := seen[w.Coord()]; ok {
			return fmt.Errorf("%w: (%d,%d) held by %s and %s", ErrDuplicateCoord, w.Layer, w.Slot, other, w.ID)
		}
		if _, ok := byID[w.ID]; ok {
			return fmt.Errorf("waymap: duplicate waypoint id %q", w.ID)
		}
		seen[w.Coord()] = w.ID
		byID[w.ID] = w
	}

	next := make(map[string][]string, len(m.Waypoints))
	for _, e := range m.Edges {
		from, ok := byID[e.FromID]
		if !ok {
			return fmt.Errorf("%w: edge %s from %q", ErrWaypointNotFound, e.ID, e.FromID)
		}
		to, ok := byID[e.ToID]
		if !ok {
			return fmt.Errorf("%w: edge %s to %q", ErrWaypointNotFound, e.ID, e.ToID)
		}
		if to.Layer != from.Layer+1 {
			return fmt.Errorf("%w: edge %s joins layer %d to %d", ErrNotLayered, e.ID, from.Layer, to.Layer)
		}
		next[from.ID] = append(next[from.ID], to.ID)
	}

	for _, w := range m.Waypoints {
		if !slices.Equal(w.Next, next[w.ID]) {
			return fmt.Errorf("waymap: waypoint %s next list disagrees with its edges", w.ID)
		}
	}
	return nil
}
