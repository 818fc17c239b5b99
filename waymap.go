package waymap

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Category tags a waypoint with what the player finds there.
type Category int

const (
	Normal Category = iota
	Special
	Event
	Loot
	Start
	End
)

var categoryNames = [...]string{"normal", "special", "event", "loot", "start", "end"}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Normal, Special, Event, Loot, Start, End}
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return c >= Normal && c <= End
}

// ParseCategory maps a case-insensitive name to its Category.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if strings.EqualFold(name, n) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("waymap: unknown category %q", name)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("waymap: invalid category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Vec3 is a point in map space. Waypoints live on the X/Z plane; Y is height.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Distance(o Vec3) float64 { return o.Sub(v).Len() }

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Coord identifies a slot on a layer.
type Coord struct {
	Layer int `json:"layer"`
	Slot  int `json:"slot"`
}

// Waypoint is a node of a generated map.
// Next holds the IDs of the waypoints on the following layer, in the order
// the connections were made.
type Waypoint struct {
	ID       string   `json:"id,omitempty"`
	MapID    string   `json:"map_id,omitempty"`
	Layer    int      `json:"layer"`
	Slot     int      `json:"slot"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Position Vec3     `json:"position"`
	Next     []string `json:"next"`
}

// Coord returns the waypoint's (layer, slot) identity.
func (w *Waypoint) Coord() Coord {
	return Coord{Layer: w.Layer, Slot: w.Slot}
}

// Edge is a directed connection from a waypoint to one on the next layer.
// Forced marks edges the generator created without a successful roll.
type Edge struct {
	ID     string `json:"id,omitempty"`
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Forced bool   `json:"forced"`
}

// Map is one generated layered graph.
// Fallback is set when no build attempt met the connection threshold and
// the linear path was produced instead.
type Map struct {
	ID        string      `json:"id"`
	Seed      int64       `json:"seed"`
	Layers    int         `json:"layers"`
	Slots     int         `json:"slots"`
	Attempts  int         `json:"attempts"`
	Fallback  bool        `json:"fallback"`
	Config    Config      `json:"config"`
	Waypoints []*Waypoint `json:"waypoints"`
	Edges     []Edge      `json:"edges"`
	CreatedAt time.Time   `json:"created_at"`
}

// At returns the waypoint at (layer, slot), or nil if there is none.
func (m *Map) At(layer, slot int) *Waypoint {
	for _, w := range m.Waypoints {
		if w.Layer == layer && w.Slot == slot {
			return w
		}
	}
	return nil
}

// Waypoint looks a waypoint up by ID.
func (m *Map) Waypoint(id string) *Waypoint {
	for _, w := range m.Waypoints {
		if w.ID == id {
			return w
		}
	}
	return nil
}

// EdgeCount is the number of connections in m.
func (m *Map) EdgeCount() int { return len(m.Edges) }

// Summary condenses m for listings.
func (m *Map) Summary() MapSummary {
	return MapSummary{
		ID:        m.ID,
		Seed:      m.Seed,
		Layers:    m.Layers,
		Slots:     m.Slots,
		Waypoints: len(m.Waypoints),
		Edges:     len(m.Edges),
		Fallback:  m.Fallback,
		CreatedAt: m.CreatedAt,
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	c.Config.Categories = append([]Category(nil), m.Config.Categories...)
	c.Waypoints = make([]*Waypoint, len(m.Waypoints))
	for i, w := range m.Waypoints {
		cw := *w
		cw.Next = append([]string(nil), w.Next...)
		c.Waypoints[i] = &cw
	}
	c.Edges = append([]Edge(nil), m.Edges...)
	return &c
}

// MapSummary is the listing view of a stored map.
type MapSummary struct {
	ID        string    `json:"id"`
	Seed      int64     `json:"seed"`
	Layers    int       `json:"layers"`
	Slots     int       `json:"slots"`
	Waypoints int       `json:"waypoints"`
	Edges     int       `json:"edges"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalConfig encodes cfg for storage columns.
func MarshalConfig(cfg Config) (json.RawMessage, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("waymap: marshal config: %w", err)
	}
	return b, nil
}
