package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/waymap"
)

// GetWaypoint fetches a single waypoint by its ID, with its outgoing links.
// Returns nil, nil if not found.
func (s *PGStore) GetWaypoint(ctx context.Context, waypointID string) (*waymap.Waypoint, error) {
	var (
		w        waymap.Waypoint
		category string
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, map_id, layer, slot, name, category, x, y, z FROM waymap_waypoints WHERE id = $1`, waypointID,
	).Scan(&w.ID, &w.MapID, &w.Layer, &w.Slot, &w.Name, &category, &w.Position.X, &w.Position.Y, &w.Position.Z)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("waymap: get waypoint: %w", err)
	}
	if w.Category, err = waymap.ParseCategory(category); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT to_waypoint_id FROM waymap_edges WHERE from_waypoint_id = $1 ORDER BY seq`, waypointID)
	if err != nil {
		return nil, fmt.Errorf("waymap: query next: %w", err)
	}
	defer rows.Close()

	w.Next = []string{}
	for rows.Next() {
		var to string
		if err := rows.Scan(&to); err != nil {
			return nil, fmt.Errorf("waymap: scan next: %w", err)
		}
		w.Next = append(w.Next, to)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waymap: rows next: %w", err)
	}
	return &w, nil
}

// UpdateWaypoint updates the name and category of an existing waypoint.
// Position and links are owned by the generator and never change.
// Returns ErrWaypointNotFound if the waypoint doesn't exist.
func (s *PGStore) UpdateWaypoint(ctx context.Context, w *waymap.Waypoint) error {
	if !w.Category.Valid() {
		return fmt.Errorf("%w: category %d", waymap.ErrInvalidConfig, int(w.Category))
	}

	ct, err := s.db.Exec(ctx,
		`UPDATE waymap_waypoints SET name = $1, category = $2 WHERE id = $3`,
		w.Name, w.Category.String(), w.ID,
	)
	if err != nil {
		return fmt.Errorf("waymap: update waypoint: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return waymap.ErrWaypointNotFound
	}
	return nil
}

// ListWaypoints returns all waypoints of a map in creation order, with
// their Next lists filled from the edge table.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListWaypoints(ctx context.Context, mapID string) ([]waymap.Waypoint, error) {
	edges, err := s.ListEdges(ctx, mapID)
	if err != nil {
		return nil, err
	}
	return s.listWaypoints(ctx, mapID, edges)
}

// listWaypoints loads the waypoint rows of a map and fills Next from the
// map's already loaded edges.
func (s *PGStore) listWaypoints(ctx context.Context, mapID string, edges []waymap.Edge) ([]waymap.Waypoint, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, layer, slot, name, category, x, y, z FROM waymap_waypoints WHERE map_id = $1 ORDER BY seq`, mapID)
	if err != nil {
		return nil, fmt.Errorf("waymap: list waypoints: %w", err)
	}
	defer rows.Close()

	waypoints := []waymap.Waypoint{}
	index := map[string]int{}
	for rows.Next() {
		var (
			w        waymap.Waypoint
			category string
		)
		if err := rows.Scan(&w.ID, &w.Layer, &w.Slot, &w.Name, &category, &w.Position.X, &w.Position.Y, &w.Position.Z); err != nil {
			return nil, fmt.Errorf("waymap: scan waypoint: %w", err)
		}
		if w.Category, err = waymap.ParseCategory(category); err != nil {
			return nil, err
		}
		w.MapID = mapID
		w.Next = []string{}
		index[w.ID] = len(waypoints)
		waypoints = append(waypoints, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waymap: rows waypoints: %w", err)
	}

	for _, e := range edges {
		if i, ok := index[e.FromID]; ok {
			waypoints[i].Next = append(waypoints[i].Next, e.ToID)
		}
	}
	return waypoints, nil
}
