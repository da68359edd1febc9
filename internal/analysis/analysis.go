// Package analysis computes terrain statistics over routed grids:
// hypsometry, slope-area scaling, and field summaries.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ekarst/flowlab/internal/dem"
)

// Hypsometry returns the normalized area-elevation curve of a field: for
// each of bins evenly spaced relative elevations y, the fraction of nodes
// lying at or above it. The curve runs from (0,1) territory at the peaks to
// x=1 at the base.
func Hypsometry(g *dem.Grid, field string, bins int) (relArea, relElev []float64, err error) {
	z, err := g.Field(field)
	if err != nil {
		return nil, nil, err
	}
	if bins < 2 {
		return nil, nil, fmt.Errorf("hypsometry needs at least 2 bins, got %d", bins)
	}

	lo, hi := floats.Min(z), floats.Max(z)
	span := hi - lo
	if span == 0 {
		return nil, nil, fmt.Errorf("field %s is flat", field)
	}

	sorted := append([]float64(nil), z...)
	sort.Float64s(sorted)
	n := float64(len(sorted))

	relArea = make([]float64, bins)
	relElev = make([]float64, bins)
	for i := 0; i < bins; i++ {
		y := float64(i) / float64(bins-1)
		h := lo + y*span
		// nodes at or above h
		k := sort.SearchFloat64s(sorted, h)
		relElev[i] = y
		relArea[i] = float64(len(sorted)-k) / n
	}
	return relArea, relElev, nil
}

// HypsometricIntegral is the area under the hypsometric curve, equivalently
// the mean normalized elevation. High values mean young, undissected
// terrain.
func HypsometricIntegral(g *dem.Grid, field string) (float64, error) {
	z, err := g.Field(field)
	if err != nil {
		return 0, err
	}
	lo, hi := floats.Min(z), floats.Max(z)
	if hi == lo {
		return 0, fmt.Errorf("field %s is flat", field)
	}
	return (stat.Mean(z, nil) - lo) / (hi - lo), nil
}

// SlopeArea fits log10(slope) against log10(area) over interior nodes with
// positive slope and more than one cell of drainage, returning the intercept
// and the scaling exponent (theta is -slope of the fit, positive for
// concave channel profiles). Needs a routed grid.
func SlopeArea(g *dem.Grid) (intercept, theta float64, nPts int, err error) {
	slope, err := g.Field(dem.FieldSteepestSlope)
	if err != nil {
		return 0, 0, 0, err
	}
	area, err := g.Field(dem.FieldDrainageArea)
	if err != nil {
		return 0, 0, 0, err
	}

	var logA, logS []float64
	cell := g.CellArea()
	for i := 0; i < g.NumNodes(); i++ {
		if g.IsBoundary(i) || slope[i] <= 0 || area[i] <= cell {
			continue
		}
		logA = append(logA, math.Log10(area[i]))
		logS = append(logS, math.Log10(slope[i]))
	}
	if len(logA) < 3 {
		return 0, 0, len(logA), fmt.Errorf("only %d usable nodes for slope-area fit", len(logA))
	}

	alpha, beta := stat.LinearRegression(logA, logS, nil, false)
	return alpha, -beta, len(logA), nil
}

// Summary holds basic statistics of one node field.
type Summary struct {
	Min, Max, Mean, Std, Median float64
}

func Summarize(g *dem.Grid, field string) (Summary, error) {
	v, err := g.Field(field)
	if err != nil {
		return Summary{}, err
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	return Summary{
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   stat.Mean(sorted, nil),
		Std:    stat.StdDev(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}, nil
}
