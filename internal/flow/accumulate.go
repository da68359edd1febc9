package flow

import (
	"sort"

	"github.com/ekarst/flowlab/internal/dem"
)

// Totals summarises mass balance of one accumulation pass.
type Totals struct {
	RunoffIn     float64 // total water injected, area * rate
	SinkOut      float64 // total discharge arriving at sink nodes
	Outlets      int     // boundary nodes that receive flow from upslope
	MaxArea      float64
	MaxAreaNode  int
	MaxDischarge float64
}

// ElevationOrder returns node ids sorted from highest to lowest on surface
// z. On a conditioned surface every receiver is strictly lower than its
// donors, so this order visits donors before receivers for any metric.
func ElevationOrder(g *dem.Grid, z []float64) []int {
	order := make([]int, g.NumNodes())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return z[order[a]] > z[order[b]] })
	return order
}

// Accumulate sweeps the routing once in elevation order, producing drainage
// area and discharge per node. runoff is a per-node rate; a nil runoff means
// a unit rate everywhere.
func Accumulate(g *dem.Grid, rt *Routing, z []float64, runoff []float64) (area, discharge []float64, totals Totals) {
	n := g.NumNodes()
	cell := g.CellArea()
	area = make([]float64, n)
	discharge = make([]float64, n)
	for i := 0; i < n; i++ {
		area[i] = cell
		rate := 1.0
		if runoff != nil {
			rate = runoff[i]
		}
		discharge[i] = cell * rate
		totals.RunoffIn += cell * rate
	}

	for _, i := range ElevationOrder(g, z) {
		if rt.IsSink(i) {
			continue
		}
		for k, rcv := range rt.Receivers[i] {
			p := rt.Proportions[i][k]
			area[rcv] += area[i] * p
			discharge[rcv] += discharge[i] * p
		}
	}

	totals.MaxAreaNode = -1
	for i := 0; i < n; i++ {
		if rt.IsSink(i) {
			totals.SinkOut += discharge[i]
			if g.IsBoundary(i) && area[i] > cell {
				totals.Outlets++
			}
		}
		if area[i] > totals.MaxArea {
			totals.MaxArea = area[i]
			totals.MaxAreaNode = i
		}
		if discharge[i] > totals.MaxDischarge {
			totals.MaxDischarge = discharge[i]
		}
	}
	return area, discharge, totals
}
