package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS waymap_maps (
    id         TEXT PRIMARY KEY,
    seed       BIGINT NOT NULL,
    layers     INT NOT NULL,
    slots      INT NOT NULL,
    attempts   INT NOT NULL,
    fallback   BOOLEAN NOT NULL DEFAULT FALSE,
    config     JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS waymap_waypoints (
    id       TEXT PRIMARY KEY,
    map_id   TEXT NOT NULL REFERENCES waymap_maps(id) ON DELETE CASCADE,
    seq      INT NOT NULL,
    layer    INT NOT NULL,
    slot     INT NOT NULL,
    name     TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    x        DOUBLE PRECISION NOT NULL,
    y        DOUBLE PRECISION NOT NULL,
    z        DOUBLE PRECISION NOT NULL,
    UNIQUE (map_id, layer, slot)
);

CREATE TABLE IF NOT EXISTS waymap_edges (
    id               TEXT PRIMARY KEY,
    map_id           TEXT NOT NULL REFERENCES waymap_maps(id) ON DELETE CASCADE,
    seq              INT NOT NULL,
    from_waypoint_id TEXT NOT NULL REFERENCES waymap_waypoints(id) ON DELETE CASCADE,
    to_waypoint_id   TEXT NOT NULL REFERENCES waymap_waypoints(id) ON DELETE CASCADE,
    forced           BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_waymap_waypoints_map_id ON waymap_waypoints(map_id);
CREATE INDEX IF NOT EXISTS idx_waymap_edges_map_id     ON waymap_edges(map_id);
CREATE INDEX IF NOT EXISTS idx_waymap_edges_from       ON waymap_edges(from_waypoint_id);
CREATE INDEX IF NOT EXISTS idx_waymap_edges_to         ON waymap_edges(to_waypoint_id);
`

// CreateSchema creates the map, waypoint and edge tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all waymap tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS waymap_edges, waymap_waypoints, waymap_maps CASCADE;`)
	return err
}
