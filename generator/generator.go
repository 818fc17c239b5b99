// Package generator builds layered waypoint maps.
//
// A build picks starting slots on the first layer and grows forward
// connections from each new waypoint, rolling per candidate against the
// configured chances. Attempts that fall short of the connection threshold
// are thrown away whole; if every attempt falls short the generator emits a
// single linear path and flags the map as a fallback.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/waymap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Generator produces maps from a fixed configuration.
// It holds no per-build state and is safe for concurrent use.
type Generator struct {
	cfg     waymap.Config
	log     *slog.Logger
	newID   func() string
	workers int
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for build progress. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithIDFunc overrides the UUID generator used for map, waypoint and edge IDs.
func WithIDFunc(f func() string) Option {
	return func(g *Generator) { g.newID = f }
}

// WithWorkers bounds the number of concurrent builds in GenerateBatch.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = max(1, n) }
}

// New validates cfg and returns a generator for it. A configuration error
// (such as an empty category set) is returned as ErrInvalidConfig and no
// generator is created.
func New(cfg waymap.Config, opts ...Option) (*Generator, error) {
	g := &Generator{
		log:     slog.Default(),
		newID:   uuid.NewString,
		workers: 4,
	}
	for _, opt := range opts {
		opt(g)
	}

	norm, warnings, err := cfg.Normalize()
	if err != nil {
		g.log.Error("Refusing to build generator", "error", err)
		return nil, err
	}
	for _, w := range warnings {
		g.log.Warn("Generator config adjusted", "detail", w)
	}
	g.cfg = norm
	return g, nil
}

// Config returns the normalized configuration.
func (g *Generator) Config() waymap.Config {
	return g.cfg
}

// Generate builds a map from seed. It always returns a map: either an
// accepted attempt or, once MaxRegenerationAttempts are spent, the linear
// fallback path with Fallback set.
func (g *Generator) Generate(seed int64) *waymap.Map {
	rng := rand.New(rand.NewSource(seed))
	log := g.log.With("seed", seed)
	b := newBuild(g.cfg, rng, g.newID, log)

	for attempt := 1; attempt <= g.cfg.MaxRegenerationAttempts; attempt++ {
		b.reset()
		b.populate()

		if Accept(g.cfg, len(b.edges)) {
			log.Info("Created map",
				"edges", len(b.edges),
				"waypoints", len(b.order),
				"attempt", attempt)
			return g.finish(b, seed, attempt, false)
		}
		log.Warn("Insufficient connections, retrying",
			"attempt", attempt,
			"edges", len(b.edges),
			"threshold", Threshold(g.cfg))
	}

	log.Warn("No attempt met the connection threshold, using fallback path",
		"attempts", g.cfg.MaxRegenerationAttempts,
		"threshold", Threshold(g.cfg))
	b.reset()
	b.fallback()
	return g.finish(b, seed, g.cfg.MaxRegenerationAttempts, true)
}

// GenerateBatch builds one map per seed. Builds run concurrently, each on a
// single worker; results are returned in seed order.
func (g *Generator) GenerateBatch(ctx context.Context, seeds []int64) ([]*waymap.Map, error) {
	maps := make([]*waymap.Map, len(seeds))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, seed := range seeds {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("waymap: batch cancelled: %w", err)
			}
			maps[i] = g.Generate(seed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return maps, nil
}

func (g *Generator) finish(b *build, seed int64, attempts int, fallback bool) *waymap.Map {
	mapID := g.newID()
	title := cases.Title(language.English)
	last := g.cfg.Layers - 1
	for _, w := range b.order {
		w.MapID = mapID
		if g.cfg.MarkEndpoints {
			switch {
			case w.Layer == 0:
				w.Category = waymap.Start
			case w.Layer == last:
				w.Category = waymap.End
			}
		}
		w.Name = waypointName(title, w)
	}

	cfg := g.cfg
	cfg.Categories = append([]waymap.Category(nil), g.cfg.Categories...)
	return &waymap.Map{
		ID:        mapID,
		Seed:      seed,
		Layers:    g.cfg.Layers,
		Slots:     g.cfg.Slots,
		Attempts:  attempts,
		Fallback:  fallback,
		Config:    cfg,
		Waypoints: b.order,
		Edges:     b.edges,
		CreatedAt: time.Now().UTC(),
	}
}

// waypointName labels w as "<Category> <layer>-<slot>", e.g. "Loot 3-1".
func waypointName(title cases.Caser, w *waymap.Waypoint) string {
	return fmt.Sprintf("%s %d-%d", title.String(w.Category.String()), w.Layer, w.Slot)
}
