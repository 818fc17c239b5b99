package generator

import (
	"log/slog"
	"math/rand"

	"github.com/meikuraledutech/waymap"
)

type candidate struct {
	slot   int
	chance float64
}

// build is the state of one generation run. It is reset at the start of
// every attempt and owned by a single Generate call.
type build struct {
	cfg       waymap.Config
	rng       *rand.Rand
	placement Placement
	newID     func() string
	log       *slog.Logger

	table [][]*waymap.Waypoint
	order []*waymap.Waypoint
	edges []waymap.Edge
}

func newBuild(cfg waymap.Config, rng *rand.Rand, newID func() string, log *slog.Logger) *build {
	return &build{
		cfg:       cfg,
		rng:       rng,
		placement: NewPlacement(cfg),
		newID:     newID,
		log:       log,
	}
}

func (b *build) reset() {
	b.table = make([][]*waymap.Waypoint, b.cfg.Layers)
	for i := range b.table {
		b.table[i] = make([]*waymap.Waypoint, b.cfg.Slots)
	}
	b.order = []*waymap.Waypoint{}
	b.edges = []waymap.Edge{}
}

func (b *build) inRange(layer, slot int) bool {
	return layer >= 0 && layer < b.cfg.Layers && slot >= 0 && slot < b.cfg.Slots
}

// startingSlots picks distinct slots of the first layer.
func (b *build) startingSlots() []int {
	return b.rng.Perm(b.cfg.Slots)[:b.cfg.StartingPoints]
}

// populate runs one full attempt from freshly chosen starting slots.
func (b *build) populate() {
	for _, slot := range b.startingSlots() {
		if b.waypoint(0, slot) == nil {
			b.log.Warn("Failed to create starting waypoint", "slot", slot)
		}
	}
}

// waypoint returns the waypoint at (layer, slot), creating it and its
// forward connections if the coordinate is still empty.
func (b *build) waypoint(layer, slot int) *waymap.Waypoint {
	if !b.inRange(layer, slot) {
		b.log.Warn("Invalid waypoint coordinate", "layer", layer, "slot", slot)
		return nil
	}
	if w := b.table[layer][slot]; w != nil {
		return w
	}
	w := b.create(layer, slot)
	b.connect(w)
	return w
}

// create places a new waypoint without connecting it.
func (b *build) create(layer, slot int) *waymap.Waypoint {
	c := waymap.Coord{Layer: layer, Slot: slot}
	w := &waymap.Waypoint{
		ID:       b.newID(),
		Layer:    layer,
		Slot:     slot,
		Position: b.placement.Position(c, b.rng),
		Category: b.cfg.Categories[b.rng.Intn(len(b.cfg.Categories))],
		Next:     []string{},
	}
	b.table[layer][slot] = w
	b.order = append(b.order, w)
	return w
}

func (b *build) connect(w *waymap.Waypoint) {
	if w.Layer >= b.cfg.Layers-1 {
		return
	}

	cands := make([]candidate, 0, 3)
	if w.Slot > 0 {
		cands = append(cands, candidate{slot: w.Slot - 1, chance: b.cfg.ChanceSide})
	}
	if w.Slot < b.cfg.Slots-1 {
		cands = append(cands, candidate{slot: w.Slot + 1, chance: b.cfg.ChanceSide})
	}
	cands = append(cands, candidate{slot: w.Slot, chance: b.cfg.ChanceMiddle})

	b.rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })

	created := 0
	for attempt := 0; created == 0 && attempt < b.cfg.MaxConnectionAttempts; attempt++ {
		for _, c := range cands {
			if b.try(w, c) {
				created++
			}
		}
	}
	if created == 0 {
		b.force(w)
	}
}

// try rolls for a single candidate and links it on success.
func (b *build) try(from *waymap.Waypoint, c candidate) bool {
	if b.rng.Float64() >= c.chance {
		return false
	}
	layer := from.Layer + 1
	if !b.cfg.AllowCrisscrossing && b.table[layer][c.slot] != nil {
		return false
	}
	to := b.waypoint(layer, c.slot)
	if to == nil {
		return false
	}
	b.link(from, to, false)
	return true
}

// force links from to the first in-range target in the order
// middle, left, right, regardless of occupancy.
func (b *build) force(from *waymap.Waypoint) {
	layer := from.Layer + 1
	for _, slot := range []int{from.Slot, from.Slot - 1, from.Slot + 1} {
		if !b.inRange(layer, slot) {
			continue
		}
		if to := b.waypoint(layer, slot); to != nil {
			b.link(from, to, true)
		}
		return
	}
}

func (b *build) link(from, to *waymap.Waypoint, forced bool) {
	from.Next = append(from.Next, to.ID)
	b.edges = append(b.edges, waymap.Edge{
		ID:     b.newID(),
		FromID: from.ID,
		ToID:   to.ID,
		Forced: forced,
	})
}

// fallback builds a single chain, one waypoint per layer, drifting right
// until it reaches the last slot.
func (b *build) fallback() {
	var prev *waymap.Waypoint
	for layer := 0; layer < b.cfg.Layers; layer++ {
		w := b.create(layer, min(layer, b.cfg.Slots-1))
		if prev != nil {
			b.link(prev, w, true)
		}
		prev = w
	}
}
