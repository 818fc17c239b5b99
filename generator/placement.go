package generator

import (
	"math/rand"

	"github.com/meikuraledutech/waymap"
)

// Placement maps grid coordinates onto the X/Z plane.
type Placement struct {
	slotWidth float64
	padding   float64
}

// NewPlacement derives slot width and layer spacing from cfg.
// cfg is expected to be normalized.
func NewPlacement(cfg waymap.Config) Placement {
	return Placement{
		slotWidth: cfg.SlotWidth(),
		padding:   cfg.Placement.LayerPadding,
	}
}

// Base returns the un-jittered centre of a slot.
func (p Placement) Base(c waymap.Coord) waymap.Vec3 {
	return waymap.Vec3{
		X: p.slotWidth*float64(c.Slot) + p.slotWidth/2,
		Z: p.padding * float64(c.Layer),
	}
}

// Position returns the slot centre shifted by up to a quarter slot on X and
// a quarter layer on Z.
func (p Placement) Position(c waymap.Coord, rng *rand.Rand) waymap.Vec3 {
	pos := p.Base(c)
	pos.X += jitter(rng, p.slotWidth/4)
	pos.Z += jitter(rng, p.padding/4)
	return pos
}

// MaxJitter reports the per-axis jitter bound (X, Z).
func (p Placement) MaxJitter() (float64, float64) {
	return p.slotWidth / 4, p.padding / 4
}

func jitter(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}
