package waymap

import (
	"context"
	"errors"
)

var (
	ErrInvalidConfig    = errors.New("waymap: invalid configuration")
	ErrMapNotFound      = errors.New("waymap: map not found")
	ErrWaypointNotFound = errors.New("waymap: waypoint not found")
	ErrNotLayered       = errors.New("waymap: edge does not connect consecutive layers")
	ErrDuplicateCoord   = errors.New("waymap: duplicate waypoint coordinate")
)

// Store defines the contract for persisting and retrieving generated maps.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Maps (bulk operations)
	SaveMap(ctx context.Context, m *Map) (*Map, error)
	GetMap(ctx context.Context, mapID string) (*Map, error)
	ListMaps(ctx context.Context) ([]MapSummary, error)
	DeleteMap(ctx context.Context, mapID string) error

	// Waypoints
	GetWaypoint(ctx context.Context, waypointID string) (*Waypoint, error)
	UpdateWaypoint(ctx context.Context, w *Waypoint) error
	ListWaypoints(ctx context.Context, mapID string) ([]Waypoint, error)

	// Edges
	ListEdges(ctx context.Context, mapID string) ([]Edge, error)
}
