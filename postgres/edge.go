package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/waymap"
)

// ListEdges returns all edges of a map in creation order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, mapID string) ([]waymap.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, from_waypoint_id, to_waypoint_id, forced FROM waymap_edges WHERE map_id = $1 ORDER BY seq`, mapID)
	if err != nil {
		return nil, fmt.Errorf("waymap: list edges: %w", err)
	}
	defer rows.Close()

	edges := []waymap.Edge{}
	for rows.Next() {
		var e waymap.Edge
		if err := rows.Scan(&e.ID, &e.FromID, &e.ToID, &e.Forced); err != nil {
			return nil, fmt.Errorf("waymap: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waymap: rows edges: %w", err)
	}

	return edges, nil
}
