// Package api exposes map generation and storage over HTTP.
package api

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/profile"
)

// Cache is the read-through cache in front of the store.
// *cache.MapCache satisfies it.
type Cache interface {
	Get(ctx context.Context, mapID string) (*waymap.Map, error)
	Put(ctx context.Context, m *waymap.Map) error
	Invalidate(ctx context.Context, mapID string) error
}

// Options configures the handlers built by New. Store is required.
type Options struct {
	Store waymap.Store
	// Cache is optional. Leave it nil (not a typed nil pointer) to disable caching.
	Cache    Cache
	Profiles map[string]waymap.Config
	Workers  int
	Logger   *slog.Logger
}

type handler struct {
	store    waymap.Store
	cache    Cache
	profiles map[string]waymap.Config
	workers  int
	log      *slog.Logger
}

// New returns a fiber app serving the map routes. Profiles defaults to the
// built-in set.
func New(opts Options) *fiber.App {
	h := &handler{
		store:    opts.Store,
		cache:    opts.Cache,
		profiles: opts.Profiles,
		workers:  max(1, opts.Workers),
		log:      opts.Logger,
	}
	if h.profiles == nil {
		h.profiles = profile.Builtin()
	}
	if h.log == nil {
		h.log = slog.Default()
	}

	app := fiber.New()
	app.Use(recoverer.New())

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", h.createSchema)
	app.Delete("/schema", h.dropSchema)

	app.Get("/profiles", h.listProfiles)

	// ── Maps ──────────────────────────────────────────────────────────
	app.Post("/maps", h.generateMap)
	app.Post("/maps/batch", h.generateBatch)
	app.Get("/maps", h.listMaps)
	app.Get("/maps/:id", h.getMap)
	app.Delete("/maps/:id", h.deleteMap)
	app.Get("/maps/:id/waypoints", h.listWaypoints)
	app.Get("/maps/:id/edges", h.listEdges)
	app.Get("/maps/:id/render", h.renderFrame)
	app.Get("/maps/:id/svg", h.renderSVG)

	// ── Waypoints ─────────────────────────────────────────────────────
	app.Get("/waypoints/:id", h.getWaypoint)
	app.Put("/waypoints/:id", h.updateWaypoint)

	return app
}

func (h *handler) createSchema(c fiber.Ctx) error {
	if err := h.store.CreateSchema(c.Context()); err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (h *handler) dropSchema(c fiber.Ctx) error {
	if err := h.store.DropSchema(c.Context()); err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (h *handler) listProfiles(c fiber.Ctx) error {
	return c.JSON(slices.Sorted(maps.Keys(h.profiles)))
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
