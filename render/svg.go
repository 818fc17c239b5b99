package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/meikuraledutech/waymap"
)

var categoryColors = map[waymap.Category]string{
	waymap.Normal:  "#1f4fff",
	waymap.Special: "#ff00ff",
	waymap.Start:   "#00c000",
	waymap.End:     "#e00000",
	waymap.Loot:    "#e0c000",
	waymap.Event:   "#00d0d0",
}

// SVGCanvas collects a drawn frame and writes it as an SVG document.
// Layer 0 is at the bottom of the picture.
type SVGCanvas struct {
	Scale  float64
	Margin float64

	waypoints []waymap.Waypoint
	segments  map[Handle]Segment
}

// NewSVGCanvas returns an empty canvas with the default scale and margin.
func NewSVGCanvas() *SVGCanvas {
	return &SVGCanvas{Scale: 40, Margin: 20, segments: map[Handle]Segment{}}
}

// ClearWaypoints starts a new frame; pooled segments are dropped with it.
func (c *SVGCanvas) ClearWaypoints() {
	c.waypoints = c.waypoints[:0]
	clear(c.segments)
}

func (c *SVGCanvas) PlaceWaypoint(w *waymap.Waypoint) {
	c.waypoints = append(c.waypoints, *w)
}

func (c *SVGCanvas) PlaceSegment(h Handle, s Segment) {
	c.segments[h] = s
}

// WriteTo renders the collected frame.
func (c *SVGCanvas) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	minX, maxX, minZ, maxZ := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, wp := range c.waypoints {
		minX, maxX = math.Min(minX, wp.Position.X), math.Max(maxX, wp.Position.X)
		minZ, maxZ = math.Min(minZ, wp.Position.Z), math.Max(maxZ, wp.Position.Z)
	}
	if len(c.waypoints) == 0 {
		minX, maxX, minZ, maxZ = 0, 0, 0, 0
	}

	px := func(x float64) float64 { return (x-minX)*c.Scale + c.Margin }
	py := func(z float64) float64 { return (maxZ-z)*c.Scale + c.Margin }
	width := (maxX-minX)*c.Scale + 2*c.Margin
	height := (maxZ-minZ)*c.Scale + 2*c.Margin

	fmt.Fprintf(cw, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.2f %.2f">`+"\n",
		width, height, width, height)

	for _, h := range slices.Sorted(maps.Keys(c.segments)) {
		s := c.segments[h]
		half := s.Heading.Scale(s.Length / 2)
		a, b := s.Center.Sub(half), s.Center.Add(half)
		fmt.Fprintf(cw, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#8a6d3b" stroke-width="3"/>`+"\n",
			px(a.X), py(a.Z), px(b.X), py(b.Z))
	}

	for _, wp := range c.waypoints {
		color, ok := categoryColors[wp.Category]
		if !ok {
			color = categoryColors[waymap.Normal]
		}
		fmt.Fprintf(cw, `  <circle cx="%.2f" cy="%.2f" r="6" fill="%s"><title>%s</title></circle>`+"\n",
			px(wp.Position.X), py(wp.Position.Z), color, html.EscapeString(wp.Name))
	}

	fmt.Fprint(cw, "</svg>\n")
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
