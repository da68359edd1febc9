package dem

import (
	"fmt"
	"math"
	"math/rand"
)

// Synthetic terrains used by the demo commands and tests. All are seeded so
// a named terrain plus a seed reproduces the same surface.

// TerrainNames lists the built-in synthetic surfaces.
func TerrainNames() []string { return []string{"tutorial", "volcano", "ridged"} }

// Synthesize builds a grid and attaches topographic__elevation for a named
// terrain.
func Synthesize(terrain string, rows, cols int, spacing float64, seed int64) (*Grid, error) {
	g, err := NewGrid(rows, cols, spacing)
	if err != nil {
		return nil, err
	}
	switch terrain {
	case "tutorial":
		g.AddField(FieldElevation, InclinedNoisePlane(g, 0.01, 1.0, seed))
	case "volcano":
		g.AddField(FieldElevation, ConeVolcano(g, seed))
	case "ridged":
		g.AddField(FieldElevation, RidgedValleys(g, seed))
	default:
		return nil, fmt.Errorf("unknown terrain: %s (available: %v)", terrain, TerrainNames())
	}
	return g, nil
}

// InclinedNoisePlane is the classic getting-started surface: a plane dipping
// toward the south edge plus uniform random roughness. The noise must exceed
// the per-row drop (gradient times spacing) or no pits can form; with the
// amplitude well above it, pits are frequent, which is the point.
func InclinedNoisePlane(g *Grid, gradient, amplitude float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, g.NumNodes())
	for n := range z {
		_, y := g.NodeXY(n)
		z[n] = gradient*y + amplitude*rng.Float64()
	}
	return z
}

// ConeVolcano is a radial cone with a summit crater, so water routed from the
// crater rim must find the breach.
func ConeVolcano(g *Grid, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	cx := g.OriginX + float64(g.Cols-1)*g.Spacing/2
	cy := g.OriginY + float64(g.Rows-1)*g.Spacing/2
	rmax := math.Hypot(cx-g.OriginX, cy-g.OriginY)
	crater := rmax * 0.15
	z := make([]float64, g.NumNodes())
	for n := range z {
		x, y := g.NodeXY(n)
		r := math.Hypot(x-cx, y-cy)
		h := (rmax - r) / rmax * 30
		if r < crater {
			h -= (crater - r) / crater * 8 // summit depression
		}
		z[n] = h + rng.Float64()*0.2
	}
	return z
}

// RidgedValleys is a sine-ridged surface dipping toward one edge, giving
// parallel drainage lines.
func RidgedValleys(g *Grid, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	wavelength := float64(g.Cols-1) * g.Spacing / 4
	z := make([]float64, g.NumNodes())
	for n := range z {
		x, y := g.NodeXY(n)
		z[n] = 0.05*y + 2*math.Abs(math.Sin(2*math.Pi*x/wavelength)) + rng.Float64()*0.1
	}
	return z
}
