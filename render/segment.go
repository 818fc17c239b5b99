package render

import (
	"errors"
	"math"

	"github.com/meikuraledutech/waymap"
)

// ErrDegenerate is returned when two waypoints are too close to draw between.
var ErrDegenerate = errors.New("render: points are too close together")

const minDistance = 0.001

// MaxSegmentsPerEdge caps how many segments Layout places between two points.
const MaxSegmentsPerEdge = 256

// Segment is one path piece: its centre and the unit direction it faces.
type Segment struct {
	Center  waymap.Vec3 `json:"center"`
	Heading waymap.Vec3 `json:"heading"`
	Length  float64     `json:"length"`
}

// Layout spaces path segments evenly between a and b. The number of
// segments is the distance divided by Length*Spacing, between one and
// MaxSegmentsPerEdge, and the leftover distance is split into equal gaps
// before, between and after them.
// Segment centres are lowered by half the segment height.
func Layout(a, b waymap.Vec3, g waymap.SegmentGeometry) ([]Segment, error) {
	dist := a.Distance(b)
	if dist < minDistance {
		return nil, ErrDegenerate
	}
	dir := b.Sub(a).Normalize()

	count := int(math.Max(1, math.Min(MaxSegmentsPerEdge, math.Floor(dist/(g.Length*g.Spacing)))))
	pad := (dist - float64(count)*g.Length) / float64(count+1)
	start := a.Add(dir.Scale(pad + g.Length/2))
	drop := waymap.Vec3{Y: -g.Height / 2}

	segs := make([]Segment, count)
	for i := range segs {
		segs[i] = Segment{
			Center:  start.Add(dir.Scale((g.Length + pad) * float64(i))).Add(drop),
			Heading: dir,
			Length:  g.Length,
		}
	}
	return segs, nil
}
