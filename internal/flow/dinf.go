package flow

import (
	"math"

	"github.com/ekarst/flowlab/internal/dem"
)

// Tarboton's D-infinity: the steepest descent direction is found on the
// eight triangular facets around a node, then flow is split between the two
// neighbors bounding that facet in proportion to the angle.

// each facet is bounded by a cardinal neighbor (r1,c1) and the adjacent
// diagonal neighbor (r2,c2)
var dinfFacets = [8][4]int{
	{0, 1, 1, 1},    // E, NE
	{1, 0, 1, 1},    // N, NE
	{1, 0, 1, -1},   // N, NW
	{0, -1, 1, -1},  // W, NW
	{0, -1, -1, -1}, // W, SW
	{-1, 0, -1, -1}, // S, SW
	{-1, 0, -1, 1},  // S, SE
	{0, 1, -1, 1},   // E, SE
}

func (rt *Routing) dinf(g *dem.Grid, z []float64, i int) {
	const quarterPi = math.Pi / 4

	d := g.Spacing
	bestS := 0.0
	bestR := 0.0
	bestCard, bestDiag := -1, -1

	for _, f := range dinfFacets {
		card, ok1 := g.NodeAtOffset(i, f[0], f[1])
		diag, ok2 := g.NodeAtOffset(i, f[2], f[3])
		if !ok1 || !ok2 {
			continue
		}
		s1 := (z[i] - z[card]) / d
		s2 := (z[card] - z[diag]) / d

		r := math.Atan2(s2, s1)
		var s float64
		switch {
		case r < 0:
			r, s = 0, s1
		case r > quarterPi:
			r, s = quarterPi, (z[i]-z[diag])/(d*math.Sqrt2)
		default:
			s = math.Hypot(s1, s2)
		}
		if s > bestS {
			bestS, bestR = s, r
			bestCard, bestDiag = card, diag
		}
	}

	if bestCard < 0 {
		rt.setSink(i)
		rt.Unrouted++
		return
	}

	pDiag := bestR / quarterPi
	switch {
	case pDiag <= 0:
		rt.Receivers[i] = []int{bestCard}
		rt.Proportions[i] = []float64{1}
	case pDiag >= 1:
		rt.Receivers[i] = []int{bestDiag}
		rt.Proportions[i] = []float64{1}
	default:
		rt.Receivers[i] = []int{bestCard, bestDiag}
		rt.Proportions[i] = []float64{1 - pDiag, pDiag}
	}
	rt.Steepest[i] = bestS
}
