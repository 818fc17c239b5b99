package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/generator"
	"github.com/meikuraledutech/waymap/internal/logger"
	"github.com/meikuraledutech/waymap/profile"
	"github.com/meikuraledutech/waymap/render"
)

const maxBatch = 100

type batchRequest struct {
	Profile string          `json:"profile"`
	Seeds   []int64         `json:"seeds"`
	Count   int             `json:"count"`
	Config  json.RawMessage `json:"config"`
}

// resolveConfig starts from the named profile and applies overrides on top.
// Fields missing from overrides keep the profile's values.
func (h *handler) resolveConfig(name string, overrides []byte) (waymap.Config, error) {
	if name == "" {
		name = profile.DefaultName
	}
	cfg, ok := h.profiles[name]
	if !ok {
		return waymap.Config{}, fmt.Errorf("unknown profile %q", name)
	}
	cfg.Categories = append([]waymap.Category(nil), cfg.Categories...)
	if len(bytes.TrimSpace(overrides)) > 0 {
		if err := json.Unmarshal(overrides, &cfg); err != nil {
			return waymap.Config{}, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

func (h *handler) newGenerator(cfg waymap.Config) (*generator.Generator, error) {
	return generator.New(cfg, generator.WithLogger(h.log), generator.WithWorkers(h.workers))
}

func generatorError(c fiber.Ctx, err error) error {
	if errors.Is(err, waymap.ErrInvalidConfig) {
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, err.Error())
}

// save stores m and primes the cache. Cache failures are logged only.
func (h *handler) save(ctx context.Context, m *waymap.Map) (*waymap.Map, error) {
	saved, err := h.store.SaveMap(ctx, m)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, saved); err != nil {
			logger.WithMapID(h.log, saved.ID).Warn("Failed to cache map", "error", err)
		}
	}
	return saved, nil
}

// load reads through the cache. Returns nil, nil if the map does not exist.
func (h *handler) load(ctx context.Context, mapID string) (*waymap.Map, error) {
	if h.cache != nil {
		m, err := h.cache.Get(ctx, mapID)
		if err != nil {
			logger.WithMapID(h.log, mapID).Warn("Cache read failed, falling back to store", "error", err)
		}
		if m != nil {
			return m, nil
		}
	}

	m, err := h.store.GetMap(ctx, mapID)
	if err != nil || m == nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, m); err != nil {
			logger.WithMapID(h.log, mapID).Warn("Failed to cache map", "error", err)
		}
	}
	return m, nil
}

func (h *handler) generateMap(c fiber.Ctx) error {
	cfg, err := h.resolveConfig(c.Query("profile"), c.Body())
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	seed := rand.Int64()
	if s := c.Query("seed"); s != "" {
		if seed, err = strconv.ParseInt(s, 10, 64); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid seed")
		}
	}

	g, err := h.newGenerator(cfg)
	if err != nil {
		return generatorError(c, err)
	}

	m, err := h.save(c.Context(), g.Generate(seed))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *handler) generateBatch(c fiber.Ctx) error {
	var req batchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	seeds := req.Seeds
	if len(seeds) == 0 {
		if req.Count < 1 {
			return fail(c, fiber.StatusBadRequest, "seeds or count required")
		}
		if req.Count > maxBatch {
			return fail(c, fiber.StatusBadRequest, fmt.Sprintf("count exceeds %d", maxBatch))
		}
		seeds = make([]int64, req.Count)
		for i := range seeds {
			seeds[i] = rand.Int64()
		}
	}
	if len(seeds) > maxBatch {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("batch exceeds %d maps", maxBatch))
	}

	cfg, err := h.resolveConfig(req.Profile, req.Config)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	g, err := h.newGenerator(cfg)
	if err != nil {
		return generatorError(c, err)
	}

	built, err := g.GenerateBatch(c.Context(), seeds)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	summaries := make([]waymap.MapSummary, 0, len(built))
	for _, m := range built {
		saved, err := h.save(c.Context(), m)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, err.Error())
		}
		summaries = append(summaries, saved.Summary())
	}
	h.log.Info("Generated batch", "maps", len(summaries), "workers", h.workers)
	return c.Status(fiber.StatusCreated).JSON(summaries)
}

func (h *handler) listMaps(c fiber.Ctx) error {
	list, err := h.store.ListMaps(c.Context())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(list)
}

func (h *handler) getMap(c fiber.Ctx) error {
	m, err := h.load(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if m == nil {
		return fail(c, fiber.StatusNotFound, "map not found")
	}
	return c.JSON(m)
}

func (h *handler) deleteMap(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.store.DeleteMap(c.Context(), id); err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(c.Context(), id); err != nil {
			logger.WithMapID(h.log, id).Warn("Failed to invalidate cached map", "error", err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) listWaypoints(c fiber.Ctx) error {
	waypoints, err := h.store.ListWaypoints(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(waypoints)
}

func (h *handler) listEdges(c fiber.Ctx) error {
	edges, err := h.store.ListEdges(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(edges)
}

func (h *handler) renderFrame(c fiber.Ctx) error {
	m, err := h.load(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if m == nil {
		return fail(c, fiber.StatusNotFound, "map not found")
	}
	frame := render.NewRenderer(nil, logger.WithMapID(h.log, m.ID)).Draw(m)
	return c.JSON(frame)
}

func (h *handler) renderSVG(c fiber.Ctx) error {
	m, err := h.load(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if m == nil {
		return fail(c, fiber.StatusNotFound, "map not found")
	}

	canvas := render.NewSVGCanvas()
	render.NewRenderer(canvas, logger.WithMapID(h.log, m.ID)).Draw(m)

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}
