package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/waymap"
	"github.com/meikuraledutech/waymap/internal/logger"
)

type waypointPatch struct {
	Name     *string          `json:"name"`
	Category *waymap.Category `json:"category"`
}

func (h *handler) getWaypoint(c fiber.Ctx) error {
	w, err := h.store.GetWaypoint(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if w == nil {
		return fail(c, fiber.StatusNotFound, "waypoint not found")
	}
	return c.JSON(w)
}

// updateWaypoint renames or recategorizes a waypoint. Fields left out of the
// body are unchanged.
func (h *handler) updateWaypoint(c fiber.Ctx) error {
	var patch waypointPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}

	w, err := h.store.GetWaypoint(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if w == nil {
		return fail(c, fiber.StatusNotFound, "waypoint not found")
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Category != nil {
		w.Category = *patch.Category
	}

	err = h.store.UpdateWaypoint(c.Context(), w)
	if errors.Is(err, waymap.ErrWaypointNotFound) {
		return fail(c, fiber.StatusNotFound, "waypoint not found")
	}
	if errors.Is(err, waymap.ErrInvalidConfig) {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	if h.cache != nil && w.MapID != "" {
		if err := h.cache.Invalidate(c.Context(), w.MapID); err != nil {
			logger.WithMapID(h.log, w.MapID).Warn("Failed to invalidate cached map", "error", err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
