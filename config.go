package waymap

import (
	"fmt"
	"math"
)

// Placement controls where waypoints land on the X/Z plane.
type Placement struct {
	Width        float64 `json:"width"`
	LayerPadding float64 `json:"layer_padding"`
}

// SegmentGeometry describes the path pieces drawn between two waypoints.
// Spacing scales the gap a single segment claims along an edge.
type SegmentGeometry struct {
	Length  float64 `json:"length"`
	Height  float64 `json:"height"`
	Spacing float64 `json:"spacing"`
}

// Config is the build configuration of one generation run.
type Config struct {
	Layers                  int             `json:"layers"`
	Slots                   int             `json:"slots"`
	StartingPoints          int             `json:"starting_points"`
	ChanceMiddle            float64         `json:"chance_middle"`
	ChanceSide              float64         `json:"chance_side"`
	AllowCrisscrossing      bool            `json:"allow_crisscrossing"`
	MinConnectionMultiplier float64         `json:"min_connection_multiplier"`
	MaxRegenerationAttempts int             `json:"max_regeneration_attempts"`
	MaxConnectionAttempts   int             `json:"max_connection_attempts"`
	Categories              []Category      `json:"categories"`
	MarkEndpoints           bool            `json:"mark_endpoints"`
	Placement               Placement       `json:"placement"`
	Segments                SegmentGeometry `json:"segments"`
}

// Upper bounds applied by Normalize. A build allocates Layers×Slots cells
// and recurses once per layer.
const (
	MaxLayers   = 1000
	MaxSlots    = 1000
	MaxAttempts = 1000
)

// DefaultConfig returns the stock ten-layer, five-slot map.
func DefaultConfig() Config {
	return Config{
		Layers:                  10,
		Slots:                   5,
		StartingPoints:          4,
		ChanceMiddle:            0.5,
		ChanceSide:              0.3,
		MinConnectionMultiplier: 3,
		MaxRegenerationAttempts: 10,
		MaxConnectionAttempts:   10,
		Categories:              []Category{Normal},
		Placement:               Placement{Width: 10, LayerPadding: 2},
		Segments:                SegmentGeometry{Length: 1, Height: 1, Spacing: 2.5},
	}
}

// Normalize clamps every field into its usable range and returns the
// adjusted copy together with a warning for each notable correction.
// A missing or invalid category set is a configuration error: the returned
// error wraps ErrInvalidConfig and the config must not be built.
func (c Config) Normalize() (Config, []string, error) {
	var warnings []string

	if len(c.Categories) == 0 {
		return c, nil, fmt.Errorf("%w: no waypoint categories configured", ErrInvalidConfig)
	}
	for i, cat := range c.Categories {
		if !cat.Valid() {
			return c, nil, fmt.Errorf("%w: category at index %d is invalid", ErrInvalidConfig, i)
		}
	}
	c.Categories = append([]Category(nil), c.Categories...)

	c.Layers = clampInt(c.Layers, 1, MaxLayers, "layers", &warnings)
	c.Slots = clampInt(c.Slots, 1, MaxSlots, "slots", &warnings)
	if c.StartingPoints > c.Slots {
		warnings = append(warnings, fmt.Sprintf("starting points (%d) > slots (%d), clamping to slots", c.StartingPoints, c.Slots))
	}
	c.StartingPoints = min(max(1, c.StartingPoints), c.Slots)

	c.ChanceMiddle = clamp01(c.ChanceMiddle)
	c.ChanceSide = clamp01(c.ChanceSide)
	if math.IsNaN(c.MinConnectionMultiplier) || c.MinConnectionMultiplier < 0 {
		c.MinConnectionMultiplier = 0
	}
	c.MaxRegenerationAttempts = clampInt(c.MaxRegenerationAttempts, 1, MaxAttempts, "max regeneration attempts", &warnings)
	c.MaxConnectionAttempts = clampInt(c.MaxConnectionAttempts, 1, MaxAttempts, "max connection attempts", &warnings)

	c.Placement.Width = math.Max(0.1, c.Placement.Width)
	c.Placement.LayerPadding = math.Max(0.1, c.Placement.LayerPadding)

	if !(c.Segments.Length > 0) || !(c.Segments.Height > 0) {
		warnings = append(warnings, "segment geometry missing, using default dimensions")
		if !(c.Segments.Length > 0) {
			c.Segments.Length = 1
		}
		if !(c.Segments.Height > 0) {
			c.Segments.Height = 1
		}
	}
	if !(c.Segments.Spacing > 0) {
		c.Segments.Spacing = 2.5
	}

	return c, warnings, nil
}

// SlotWidth is the horizontal extent owned by a single slot.
func (c Config) SlotWidth() float64 {
	return c.Placement.Width / float64(c.Slots)
}

// clampInt bounds v to [lo, hi]. Only the upper clamp warns; values below
// lo are the usual "unset" zero.
func clampInt(v, lo, hi int, name string, warnings *[]string) int {
	if v > hi {
		*warnings = append(*warnings, fmt.Sprintf("%s (%d) > %d, clamping", name, v, hi))
		return hi
	}
	return max(lo, v)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
