package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/meikuraledutech/waymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestGenerator(t *testing.T, cfg waymap.Config) *Generator {
	t.Helper()
	g, err := New(cfg, WithLogger(quietLogger()), WithIDFunc(counterIDs()))
	require.NoError(t, err)
	return g
}

func layerOf(t *testing.T, m *waymap.Map, id string) int {
	t.Helper()
	w := m.Waypoint(id)
	require.NotNil(t, w, "edge endpoint %s must exist", id)
	return w.Layer
}

func TestNew_RejectsEmptyCategories(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Categories = nil

	g, err := New(cfg, WithLogger(quietLogger()))
	assert.Nil(t, g)
	assert.ErrorIs(t, err, waymap.ErrInvalidConfig)
}

func TestNew_ClampsStartingPoints(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Slots = 3
	cfg.StartingPoints = 8

	g := newTestGenerator(t, cfg)
	assert.Equal(t, 3, g.Config().StartingPoints)
}

func TestGenerate_EdgesJoinConsecutiveLayers(t *testing.T) {
	g := newTestGenerator(t, waymap.DefaultConfig())

	for seed := int64(1); seed <= 25; seed++ {
		m := g.Generate(seed)
		for _, e := range m.Edges {
			assert.Equal(t, layerOf(t, m, e.FromID)+1, layerOf(t, m, e.ToID), "seed %d edge %s", seed, e.ID)
		}
		require.NoError(t, waymap.Validate(m), "seed %d", seed)
	}
}

func TestGenerate_ThresholdOrFallback(t *testing.T) {
	cfg := waymap.DefaultConfig()
	g := newTestGenerator(t, cfg)

	for seed := int64(1); seed <= 25; seed++ {
		m := g.Generate(seed)
		if m.Fallback {
			assert.Len(t, m.Edges, cfg.Layers-1, "seed %d", seed)
			assert.Len(t, m.Waypoints, cfg.Layers, "seed %d", seed)
			continue
		}
		assert.GreaterOrEqual(t, float64(len(m.Edges)), Threshold(g.Config()), "seed %d", seed)
		assert.LessOrEqual(t, m.Attempts, cfg.MaxRegenerationAttempts)
	}
}

func TestGenerate_UnreachableThresholdUsesFallback(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Layers = 6
	cfg.Slots = 4
	cfg.MinConnectionMultiplier = 100
	cfg.MaxRegenerationAttempts = 3

	m := newTestGenerator(t, cfg).Generate(7)

	require.True(t, m.Fallback)
	assert.Equal(t, 3, m.Attempts)
	require.Len(t, m.Waypoints, 6)
	require.Len(t, m.Edges, 5)
	for layer, w := range m.Waypoints {
		assert.Equal(t, layer, w.Layer)
		assert.Equal(t, min(layer, cfg.Slots-1), w.Slot)
	}
	for _, e := range m.Edges {
		assert.True(t, e.Forced)
	}
	require.NoError(t, waymap.Validate(m))
}

func TestGenerate_SingleLayerSingleSlot(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Layers = 1
	cfg.Slots = 1
	cfg.StartingPoints = 1

	// Threshold 1*3 can never be met with zero edges.
	m := newTestGenerator(t, cfg).Generate(1)
	assert.True(t, m.Fallback)
	assert.Len(t, m.Waypoints, 1)
	assert.Empty(t, m.Edges)

	cfg.MinConnectionMultiplier = 0
	m = newTestGenerator(t, cfg).Generate(1)
	assert.False(t, m.Fallback)
	assert.Equal(t, 1, m.Attempts)
	assert.Len(t, m.Waypoints, 1)
	assert.Empty(t, m.Edges)
}

func TestGenerate_SingleSlotIsChain(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Layers = 8
	cfg.Slots = 1
	cfg.MinConnectionMultiplier = 0.5

	for seed := int64(1); seed <= 10; seed++ {
		m := newTestGenerator(t, cfg).Generate(seed)
		assert.Len(t, m.Waypoints, 8)
		assert.Len(t, m.Edges, 7)
		for _, w := range m.Waypoints {
			assert.Equal(t, 0, w.Slot)
		}
	}
}

func TestGenerate_CertainChancesCreateEveryCandidate(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Layers = 3
	cfg.Slots = 3
	cfg.StartingPoints = 3
	cfg.ChanceMiddle = 1
	cfg.ChanceSide = 1
	cfg.AllowCrisscrossing = true
	cfg.MinConnectionMultiplier = 1

	for seed := int64(1); seed <= 10; seed++ {
		m := newTestGenerator(t, cfg).Generate(seed)
		require.False(t, m.Fallback)
		assert.Len(t, m.Waypoints, 9)
		// Per transition: edge slots fan out to 2, the middle slot to 3.
		assert.Len(t, m.Edges, 14)
		for _, e := range m.Edges {
			assert.False(t, e.Forced)
		}
	}
}

func TestGenerate_ZeroChancesForceMiddle(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Layers = 5
	cfg.Slots = 4
	cfg.StartingPoints = 2
	cfg.ChanceMiddle = 0
	cfg.ChanceSide = 0
	cfg.MinConnectionMultiplier = 0

	m := newTestGenerator(t, cfg).Generate(3)

	require.False(t, m.Fallback)
	assert.Len(t, m.Waypoints, 2*cfg.Layers)
	assert.Len(t, m.Edges, 2*(cfg.Layers-1))
	for _, w := range m.Waypoints {
		if w.Layer == cfg.Layers-1 {
			assert.Empty(t, w.Next)
			continue
		}
		require.Len(t, w.Next, 1)
		assert.Equal(t, w.Slot, m.Waypoint(w.Next[0]).Slot)
	}
	for _, e := range m.Edges {
		assert.True(t, e.Forced)
	}
}

func TestGenerate_NoCrisscrossRespectsOccupancy(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.ChanceMiddle = 1
	cfg.ChanceSide = 1
	cfg.AllowCrisscrossing = false
	cfg.MinConnectionMultiplier = 0

	for seed := int64(1); seed <= 20; seed++ {
		m := newTestGenerator(t, cfg).Generate(seed)
		rolled := map[string]int{}
		for _, e := range m.Edges {
			if !e.Forced {
				rolled[e.ToID]++
			}
		}
		for id, n := range rolled {
			assert.Equal(t, 1, n, "seed %d waypoint %s joined by rolled edges", seed, id)
		}
	}
}

func TestGenerate_CoordinatesUnique(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.AllowCrisscrossing = true
	g := newTestGenerator(t, cfg)

	for seed := int64(1); seed <= 20; seed++ {
		m := g.Generate(seed)
		seen := map[waymap.Coord]bool{}
		for _, w := range m.Waypoints {
			assert.False(t, seen[w.Coord()], "seed %d duplicate %v", seed, w.Coord())
			seen[w.Coord()] = true
		}
	}
}

func TestBuild_SameCoordinateSameWaypoint(t *testing.T) {
	cfg, _, err := waymap.DefaultConfig().Normalize()
	require.NoError(t, err)

	b := newBuild(cfg, rand.New(rand.NewSource(1)), counterIDs(), quietLogger())
	b.reset()

	first := b.waypoint(2, 3)
	require.NotNil(t, first)
	assert.Same(t, first, b.waypoint(2, 3))
	assert.Nil(t, b.waypoint(cfg.Layers, 0))
	assert.Nil(t, b.waypoint(0, -1))
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.Categories = []waymap.Category{waymap.Normal, waymap.Loot, waymap.Event}

	a := newTestGenerator(t, cfg).Generate(42)
	b := newTestGenerator(t, cfg).Generate(42)

	require.Equal(t, len(a.Waypoints), len(b.Waypoints))
	for i := range a.Waypoints {
		assert.Equal(t, a.Waypoints[i].Coord(), b.Waypoints[i].Coord())
		assert.Equal(t, a.Waypoints[i].Category, b.Waypoints[i].Category)
		assert.Equal(t, a.Waypoints[i].Position, b.Waypoints[i].Position)
	}
	assert.Equal(t, a.Edges, b.Edges)
}

func TestGenerate_MarkEndpoints(t *testing.T) {
	cfg := waymap.DefaultConfig()
	cfg.MarkEndpoints = true
	cfg.Categories = []waymap.Category{waymap.Loot}

	labels := map[waymap.Category]string{waymap.Start: "Start", waymap.End: "End", waymap.Loot: "Loot"}
	m := newTestGenerator(t, cfg).Generate(9)
	for _, w := range m.Waypoints {
		switch w.Layer {
		case 0:
			assert.Equal(t, waymap.Start, w.Category)
		case cfg.Layers - 1:
			assert.Equal(t, waymap.End, w.Category)
		default:
			assert.Equal(t, waymap.Loot, w.Category)
		}
		assert.Equal(t, fmt.Sprintf("%s %d-%d", labels[w.Category], w.Layer, w.Slot), w.Name)
	}
}

func TestPlacement_JitterBounds(t *testing.T) {
	cfg, _, err := waymap.DefaultConfig().Normalize()
	require.NoError(t, err)
	p := NewPlacement(cfg)
	jx, jz := p.MaxJitter()
	rng := rand.New(rand.NewSource(5))

	for layer := 0; layer < cfg.Layers; layer++ {
		for slot := 0; slot < cfg.Slots; slot++ {
			c := waymap.Coord{Layer: layer, Slot: slot}
			base := p.Base(c)
			for i := 0; i < 50; i++ {
				pos := p.Position(c, rng)
				assert.LessOrEqual(t, abs(pos.X-base.X), jx)
				assert.LessOrEqual(t, abs(pos.Z-base.Z), jz)
				assert.Zero(t, pos.Y)
			}
		}
	}
	assert.InDelta(t, 0.5, jx, 1e-9)
	assert.InDelta(t, 0.5, jz, 1e-9)
}

func TestGenerateBatch(t *testing.T) {
	g, err := New(waymap.DefaultConfig(), WithLogger(quietLogger()), WithWorkers(2))
	require.NoError(t, err)

	maps, err := g.GenerateBatch(context.Background(), []int64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Len(t, maps, 4)
	for i, m := range maps {
		assert.Equal(t, int64(i+1), m.Seed)
		assert.NoError(t, waymap.Validate(m))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.GenerateBatch(ctx, []int64{1, 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
