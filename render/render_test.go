package render

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGeometry = waymap.SegmentGeometry{Length: 1, Height: 1, Spacing: 2.5}

func TestLayout_EvenSpacing(t *testing.T) {
	segs, err := Layout(waymap.Vec3{}, waymap.Vec3{Z: 10}, testGeometry)
	require.NoError(t, err)
	require.Len(t, segs, 4)

	for i, want := range []float64{1.7, 3.9, 6.1, 8.3} {
		assert.InDelta(t, want, segs[i].Center.Z, 1e-9, "segment %d", i)
		assert.InDelta(t, -0.5, segs[i].Center.Y, 1e-9)
		assert.InDelta(t, 1, segs[i].Heading.Z, 1e-9)
	}
}

func TestLayout_ShortEdgeGetsOneSegment(t *testing.T) {
	segs, err := Layout(waymap.Vec3{X: 1}, waymap.Vec3{X: 2}, testGeometry)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.InDelta(t, 1.5, segs[0].Center.X, 1e-9)
}

func TestLayout_CapsSegmentCount(t *testing.T) {
	g := waymap.SegmentGeometry{Length: 1e-6, Height: 1, Spacing: 1}
	segs, err := Layout(waymap.Vec3{}, waymap.Vec3{Z: 1e9}, g)
	require.NoError(t, err)
	require.Len(t, segs, MaxSegmentsPerEdge)
	assert.Less(t, segs[len(segs)-1].Center.Z, 1e9)
}

func TestLayout_Degenerate(t *testing.T) {
	_, err := Layout(waymap.Vec3{X: 3, Z: 3}, waymap.Vec3{X: 3, Z: 3.0001}, testGeometry)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestPool_RecyclesAndGrows(t *testing.T) {
	p := NewPool(2, func() int { return 0 })
	assert.Equal(t, 2, p.Cap())

	h1, _ := p.Acquire()
	h2, _ := p.Acquire()
	h3, v3 := p.Acquire()
	*v3 = 7
	assert.Equal(t, 3, p.Cap())
	assert.Equal(t, 3, p.Active())
	assert.Equal(t, 7, *p.Get(h3))

	p.Release(h2)
	p.Release(h2)
	assert.Equal(t, 2, p.Active())
	assert.Nil(t, p.Get(h2))

	h4, _ := p.Acquire()
	assert.Equal(t, h2, h4)
	assert.Equal(t, 3, p.Cap())

	p.Release(Handle(99))
	p.ReleaseAll()
	assert.Equal(t, 0, p.Active())
	assert.Nil(t, p.Get(h1))
}

type recordingCanvas struct {
	clears    int
	waypoints []string
	segments  []Handle
}

func (c *recordingCanvas) ClearWaypoints() {
	c.clears++
	c.waypoints = nil
	c.segments = nil
}
func (c *recordingCanvas) PlaceWaypoint(w *waymap.Waypoint) { c.waypoints = append(c.waypoints, w.ID) }
func (c *recordingCanvas) PlaceSegment(h Handle, _ Segment) { c.segments = append(c.segments, h) }

func lineMap() *waymap.Map {
	cfg := waymap.DefaultConfig()
	cfg.Segments = testGeometry
	return &waymap.Map{
		ID:     "m",
		Layers: 3,
		Slots:  1,
		Config: cfg,
		Waypoints: []*waymap.Waypoint{
			{ID: "a", Layer: 0, Next: []string{"b"}},
			{ID: "b", Layer: 1, Position: waymap.Vec3{Z: 10}, Next: []string{"c"}},
			{ID: "c", Layer: 2, Position: waymap.Vec3{Z: 10}},
		},
		Edges: []waymap.Edge{
			{ID: "ab", FromID: "a", ToID: "b"},
			{ID: "bc", FromID: "b", ToID: "c"},
		},
	}
}

func TestRenderer_DrawSkipsDegenerateEdges(t *testing.T) {
	canvas := &recordingCanvas{}
	r := NewRenderer(canvas, slog.New(slog.NewTextHandler(io.Discard, nil)))

	frame := r.Draw(lineMap())
	assert.Equal(t, 3, frame.Waypoints)
	assert.Equal(t, 1, frame.Skipped)
	assert.Len(t, frame.Segments, 4)
	assert.Equal(t, []string{"a", "b", "c"}, canvas.waypoints)
	assert.Len(t, canvas.segments, 4)
	assert.Equal(t, 4, r.Active())

	// Redrawing recycles the same pooled segments.
	frame = r.Draw(lineMap())
	assert.Equal(t, 2, canvas.clears)
	assert.Equal(t, 4, r.Active())
	assert.Equal(t, DefaultPoolSize, frame.PoolSize)

	r.Clear()
	assert.Zero(t, r.Active())
}

func TestRenderer_GeneratedMapToSVG(t *testing.T) {
	g, err := generator.New(waymap.DefaultConfig(), generator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	m := g.Generate(11)

	canvas := NewSVGCanvas()
	frame := NewRenderer(canvas, nil).Draw(m)
	assert.Equal(t, len(m.Waypoints), frame.Waypoints)
	assert.GreaterOrEqual(t, len(frame.Segments), len(m.Edges)-frame.Skipped)

	var buf bytes.Buffer
	n, err := canvas.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, len(m.Waypoints), strings.Count(out, "<circle"))
	assert.Equal(t, len(frame.Segments), strings.Count(out, "<line"))
}
