package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, seed int64) *waymap.Map {
	t.Helper()
	g, err := generator.New(waymap.DefaultConfig(), generator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return g.Generate(seed)
}

func TestStore_SaveAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	m := generate(t, 1)

	saved, err := s.SaveMap(ctx, m)
	require.NoError(t, err)

	got, err := s.GetMap(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.Seed, got.Seed)
	assert.Len(t, got.Waypoints, len(m.Waypoints))
	assert.Equal(t, m.Edges, got.Edges)

	// Mutating the returned copy leaves the store untouched.
	got.Waypoints[0].Name = "changed"
	again, _ := s.GetMap(ctx, saved.ID)
	assert.NotEqual(t, "changed", again.Waypoints[0].Name)
}

func TestStore_GetMissing(t *testing.T) {
	s := New()
	ctx := context.Background()

	m, err := s.GetMap(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, m)

	w, err := s.GetWaypoint(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, w)

	ws, err := s.ListWaypoints(ctx, "nope")
	assert.NoError(t, err)
	assert.NotNil(t, ws)
	assert.Empty(t, ws)
}

func TestStore_SaveRejectsBrokenMap(t *testing.T) {
	m := generate(t, 2)
	m.Edges = append(m.Edges, waymap.Edge{FromID: m.Waypoints[0].ID, ToID: m.Waypoints[0].ID})

	_, err := New().SaveMap(context.Background(), m)
	assert.Error(t, err)
}

func TestStore_UpdateWaypoint(t *testing.T) {
	s := New()
	ctx := context.Background()
	m, err := s.SaveMap(ctx, generate(t, 3))
	require.NoError(t, err)

	id := m.Waypoints[0].ID
	require.NoError(t, s.UpdateWaypoint(ctx, &waymap.Waypoint{ID: id, Name: "Camp", Category: waymap.Special}))

	w, err := s.GetWaypoint(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Camp", w.Name)
	assert.Equal(t, waymap.Special, w.Category)

	err = s.UpdateWaypoint(ctx, &waymap.Waypoint{ID: "missing", Category: waymap.Normal})
	assert.ErrorIs(t, err, waymap.ErrWaypointNotFound)
}

func TestStore_ListAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, err := s.SaveMap(ctx, generate(t, 4))
	require.NoError(t, err)
	_, err = s.SaveMap(ctx, generate(t, 5))
	require.NoError(t, err)

	list, err := s.ListMaps(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	edges, err := s.ListEdges(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, edges, len(a.Edges))

	require.NoError(t, s.DeleteMap(ctx, a.ID))
	require.NoError(t, s.DeleteMap(ctx, a.ID))
	list, _ = s.ListMaps(ctx)
	assert.Len(t, list, 1)

	require.NoError(t, s.DropSchema(ctx))
	list, _ = s.ListMaps(ctx)
	assert.Empty(t, list)
}
