// Package render turns a finished map into placed waypoint visuals and
// pooled path segments.
package render

import (
	"errors"
	"log/slog"

	"github.com/meikuraledutech/waymap"
)

// Canvas receives the visible side effects of a draw.
type Canvas interface {
	ClearWaypoints()
	PlaceWaypoint(w *waymap.Waypoint)
	PlaceSegment(h Handle, s Segment)
}

// PlacedSegment is a pooled segment and the edge it belongs to.
type PlacedSegment struct {
	Handle Handle `json:"handle"`
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Segment
}

// Frame summarizes one Draw call.
type Frame struct {
	MapID     string          `json:"map_id"`
	Waypoints int             `json:"waypoints"`
	Segments  []PlacedSegment `json:"segments"`
	Skipped   int             `json:"skipped"`
	PoolSize  int             `json:"pool_size"`
}

// Renderer draws maps onto a Canvas, recycling segments between draws.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	pool   *Pool[Segment]
	canvas Canvas
	log    *slog.Logger
}

// NewRenderer returns a renderer with a preallocated segment pool.
// canvas and log may be nil.
func NewRenderer(canvas Canvas, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		pool:   NewPool(DefaultPoolSize, func() Segment { return Segment{} }),
		canvas: canvas,
		log:    log,
	}
}

// Clear returns every segment to the pool and removes waypoint visuals.
func (r *Renderer) Clear() {
	r.pool.ReleaseAll()
	if r.canvas != nil {
		r.canvas.ClearWaypoints()
	}
}

// Draw replaces whatever was drawn before with m.
// Edges whose endpoints coincide are skipped with a warning.
func (r *Renderer) Draw(m *waymap.Map) Frame {
	r.Clear()

	geom := m.Config.Segments
	if !(geom.Length > 0) || !(geom.Spacing > 0) {
		geom = waymap.DefaultConfig().Segments
	}

	frame := Frame{MapID: m.ID, Segments: []PlacedSegment{}}
	for _, w := range m.Waypoints {
		if r.canvas != nil {
			r.canvas.PlaceWaypoint(w)
		}
		frame.Waypoints++
	}

	for _, e := range m.Edges {
		from, to := m.Waypoint(e.FromID), m.Waypoint(e.ToID)
		if from == nil || to == nil {
			r.log.Warn("Attempted to draw edge with missing waypoint", "edge_id", e.ID)
			frame.Skipped++
			continue
		}

		segs, err := Layout(from.Position, to.Position, geom)
		if errors.Is(err, ErrDegenerate) {
			r.log.Warn("Points are too close together", "from_id", from.ID, "to_id", to.ID)
			frame.Skipped++
			continue
		}

		for _, s := range segs {
			h, slot := r.pool.Acquire()
			*slot = s
			if r.canvas != nil {
				r.canvas.PlaceSegment(h, s)
			}
			frame.Segments = append(frame.Segments, PlacedSegment{
				Handle:  h,
				FromID:  e.FromID,
				ToID:    e.ToID,
				Segment: s,
			})
		}
	}

	frame.PoolSize = r.pool.Cap()
	return frame
}

// Active is the number of segments currently drawn.
func (r *Renderer) Active() int { return r.pool.Active() }
