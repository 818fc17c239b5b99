// Package memory implements waymap.Store in process memory.
// It backs the server when no database is configured and the API tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/meikuraledutech/waymap"
)

// Store keeps maps in a mutex-guarded map. Values are copied on the way in
// and out so callers never share state with the store.
type Store struct {
	mu   sync.RWMutex
	maps map[string]*waymap.Map
}

var _ waymap.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{maps: make(map[string]*waymap.Map)}
}

// CreateSchema is a no-op; there is nothing to create.
func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema forgets every stored map.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps = make(map[string]*waymap.Map)
	return nil
}

// SaveMap stores a copy of m, replacing any map with the same ID.
func (s *Store) SaveMap(ctx context.Context, m *waymap.Map) (*waymap.Map, error) {
	waymap.AssignIDs(m)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := waymap.Validate(m); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[m.ID] = m.Clone()
	return m, nil
}

// GetMap returns nil, nil if the map does not exist.
func (s *Store) GetMap(ctx context.Context, mapID string) (*waymap.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maps[mapID].Clone(), nil
}

// ListMaps returns summaries, newest first.
func (s *Store) ListMaps(ctx context.Context) ([]waymap.MapSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]waymap.MapSummary, 0, len(s.maps))
	for _, m := range s.maps {
		out = append(out, m.Summary())
	}
	slices.SortFunc(out, func(a, b waymap.MapSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteMap is a no-op for unknown IDs.
func (s *Store) DeleteMap(ctx context.Context, mapID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.maps, mapID)
	return nil
}

// GetWaypoint returns nil, nil if no stored map holds the waypoint.
func (s *Store) GetWaypoint(ctx context.Context, waypointID string) (*waymap.Waypoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.maps {
		if w := m.Waypoint(waypointID); w != nil {
			c := *w
			c.Next = slices.Clone(w.Next)
			return &c, nil
		}
	}
	return nil, nil
}

// UpdateWaypoint changes the name and category of a stored waypoint.
func (s *Store) UpdateWaypoint(ctx context.Context, w *waymap.Waypoint) error {
	if !w.Category.Valid() {
		return fmt.Errorf("%w: category %d", waymap.ErrInvalidConfig, int(w.Category))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.maps {
		if stored := m.Waypoint(w.ID); stored != nil {
			stored.Name = w.Name
			stored.Category = w.Category
			return nil
		}
	}
	return waymap.ErrWaypointNotFound
}

// ListWaypoints returns an empty slice (not nil) for unknown maps.
func (s *Store) ListWaypoints(ctx context.Context, mapID string) ([]waymap.Waypoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []waymap.Waypoint{}
	if m, ok := s.maps[mapID]; ok {
		for _, w := range m.Waypoints {
			c := *w
			c.Next = slices.Clone(w.Next)
			out = append(out, c)
		}
	}
	return out, nil
}

// ListEdges returns an empty slice (not nil) for unknown maps.
func (s *Store) ListEdges(ctx context.Context, mapID string) ([]waymap.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []waymap.Edge{}
	if m, ok := s.maps[mapID]; ok {
		out = append(out, m.Edges...)
	}
	return out, nil
}
