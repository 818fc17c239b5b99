package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meikuraledutech/waymap"
)

// SaveMap saves a full map (waypoints + edges) in one transaction.
// Waypoints/edges without IDs get auto-generated UUIDs. The map is
// validated as a layered graph first; an existing map with the same ID is
// replaced.
func (s *PGStore) SaveMap(ctx context.Context, m *waymap.Map) (*waymap.Map, error) {
	waymap.AssignIDs(m)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := waymap.Validate(m); err != nil {
		return nil, err
	}

	cfg, err := waymap.MarshalConfig(m.Config)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("waymap: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: waypoints and edges cascade with the map row.
	if _, err := tx.Exec(ctx, `DELETE FROM waymap_maps WHERE id = $1`, m.ID); err != nil {
		return nil, fmt.Errorf("waymap: delete map: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO waymap_maps (id, seed, layers, slots, attempts, fallback, config, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Seed, m.Layers, m.Slots, m.Attempts, m.Fallback, cfg, m.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("waymap: insert map: %w", err)
	}

	for i, w := range m.Waypoints {
		if _, err := tx.Exec(ctx,
			`INSERT INTO waymap_waypoints (id, map_id, seq, layer, slot, name, category, x, y, z)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			w.ID, m.ID, i, w.Layer, w.Slot, w.Name, w.Category.String(), w.Position.X, w.Position.Y, w.Position.Z,
		); err != nil {
			return nil, fmt.Errorf("waymap: insert waypoint %s: %w", w.ID, err)
		}
	}

	for i, e := range m.Edges {
		if _, err := tx.Exec(ctx,
			`INSERT INTO waymap_edges (id, map_id, seq, from_waypoint_id, to_waypoint_id, forced)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, m.ID, i, e.FromID, e.ToID, e.Forced,
		); err != nil {
			return nil, fmt.Errorf("waymap: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("waymap: commit: %w", err)
	}
	return m, nil
}

// GetMap retrieves a full map (waypoints + edges) by its ID.
// Returns nil, nil if the map doesn't exist.
func (s *PGStore) GetMap(ctx context.Context, mapID string) (*waymap.Map, error) {
	m := &waymap.Map{ID: mapID}
	var cfg []byte
	err := s.db.QueryRow(ctx,
		`SELECT seed, layers, slots, attempts, fallback, config, created_at FROM waymap_maps WHERE id = $1`, mapID,
	).Scan(&m.Seed, &m.Layers, &m.Slots, &m.Attempts, &m.Fallback, &cfg, &m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("waymap: get map: %w", err)
	}
	if err := json.Unmarshal(cfg, &m.Config); err != nil {
		return nil, fmt.Errorf("waymap: decode config: %w", err)
	}

	if m.Edges, err = s.ListEdges(ctx, mapID); err != nil {
		return nil, err
	}
	waypoints, err := s.listWaypoints(ctx, mapID, m.Edges)
	if err != nil {
		return nil, err
	}
	m.Waypoints = make([]*waymap.Waypoint, len(waypoints))
	for i := range waypoints {
		m.Waypoints[i] = &waypoints[i]
	}
	return m, nil
}

// ListMaps returns summaries of all stored maps, newest first.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListMaps(ctx context.Context) ([]waymap.MapSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.seed, m.layers, m.slots, m.fallback, m.created_at,
		       (SELECT COUNT(*) FROM waymap_waypoints w WHERE w.map_id = m.id),
		       (SELECT COUNT(*) FROM waymap_edges e WHERE e.map_id = m.id)
		FROM waymap_maps m
		ORDER BY m.created_at DESC, m.id`)
	if err != nil {
		return nil, fmt.Errorf("waymap: list maps: %w", err)
	}
	defer rows.Close()

	out := []waymap.MapSummary{}
	for rows.Next() {
		var sum waymap.MapSummary
		if err := rows.Scan(&sum.ID, &sum.Seed, &sum.Layers, &sum.Slots, &sum.Fallback, &sum.CreatedAt,
			&sum.Waypoints, &sum.Edges); err != nil {
			return nil, fmt.Errorf("waymap: scan map: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("waymap: rows maps: %w", err)
	}
	return out, nil
}

// DeleteMap removes a map with its waypoints and edges.
// No error if the map doesn't exist.
func (s *PGStore) DeleteMap(ctx context.Context, mapID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM waymap_maps WHERE id = $1`, mapID); err != nil {
		return fmt.Errorf("waymap: delete map: %w", err)
	}
	return nil
}
