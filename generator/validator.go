package generator

import "github.com/meikuraledutech/waymap"

// Threshold is the minimum number of edges an attempt must produce.
func Threshold(cfg waymap.Config) float64 {
	return float64(cfg.Layers) * cfg.MinConnectionMultiplier
}

// Accept reports whether an attempt with the given edge count is kept.
// A fractional threshold is effectively rounded up since edges is integral.
func Accept(cfg waymap.Config, edges int) bool {
	return float64(edges) >= Threshold(cfg)
}
