package flow

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ekarst/flowlab/internal/dem"
)

// Routing holds the receiver topology of one direction pass. Sinks (boundary
// nodes, and any interior node left without a downslope neighbor) receive
// from themselves with proportion 1.
type Routing struct {
	Receivers   [][]int
	Proportions [][]float64
	Steepest    []float64 // steepest downslope gradient per node
	Unrouted    int       // interior nodes with no downslope neighbor
}

// IsSink reports whether node routes to itself.
func (rt *Routing) IsSink(node int) bool {
	return len(rt.Receivers[node]) == 1 && rt.Receivers[node][0] == node
}

// ReceiverFields flattens the topology to per-node values: the receiver
// carrying the largest share of flow, and that share. Single-flow metrics
// report their only receiver with proportion 1; sinks report themselves.
func (rt *Routing) ReceiverFields() (node, proportion []float64) {
	n := len(rt.Receivers)
	node = make([]float64, n)
	proportion = make([]float64, n)
	for i := 0; i < n; i++ {
		best, p := i, 0.0
		for k, r := range rt.Receivers[i] {
			if rt.Proportions[i][k] > p {
				best, p = r, rt.Proportions[i][k]
			}
		}
		node[i] = float64(best)
		proportion[i] = p
	}
	return node, proportion
}

// Quinn's contour-length weights for multiple-flow partitioning.
const (
	cardinalContour = 0.5
	diagonalContour = 0.354
)

// Direct assigns receivers on surface z under the given metric. exponent is
// only consulted by freeman and holmgren; rng only by rho metrics (it must
// be non-nil for those).
func Direct(g *dem.Grid, z []float64, metric Metric, exponent float64, rng *rand.Rand) (*Routing, error) {
	if metric.Stochastic() && rng == nil {
		return nil, fmt.Errorf("metric %s needs a random source", metric)
	}
	n := g.NumNodes()
	rt := &Routing{
		Receivers:   make([][]int, n),
		Proportions: make([][]float64, n),
		Steepest:    make([]float64, n),
	}

	buf := make([]dem.Neighbor, 0, 8)
	for i := 0; i < n; i++ {
		if g.IsBoundary(i) {
			rt.setSink(i)
			continue
		}
		switch metric {
		case D8, D4:
			rt.steepest(g, z, i, metric.Connectivity(), buf)
		case Rho8, Rho4:
			rt.stochastic(g, z, i, metric.Connectivity(), rng, buf)
		case Quinn:
			rt.partition(g, z, i, 1.0, buf)
		case Freeman, Holmgren:
			rt.partition(g, z, i, exponent, buf)
		case Dinf:
			rt.dinf(g, z, i)
		default:
			return nil, fmt.Errorf("unknown flow metric: %s", metric)
		}
	}
	return rt, nil
}

func (rt *Routing) setSink(i int) {
	rt.Receivers[i] = []int{i}
	rt.Proportions[i] = []float64{1}
}

func (rt *Routing) steepest(g *dem.Grid, z []float64, i, conn int, buf []dem.Neighbor) {
	best, bestSlope := -1, 0.0
	for _, nb := range neighborsFor(g, i, conn, buf) {
		s := (z[i] - z[nb.Node]) / nb.Dist
		if s > bestSlope {
			best, bestSlope = nb.Node, s
		}
	}
	if best < 0 {
		rt.setSink(i)
		rt.Unrouted++
		return
	}
	rt.Receivers[i] = []int{best}
	rt.Proportions[i] = []float64{1}
	rt.Steepest[i] = bestSlope
}

// stochastic draws one receiver among the downslope neighbors with
// probability proportional to slope, which breaks the directional bias of
// the deterministic pick on near-planar surfaces.
func (rt *Routing) stochastic(g *dem.Grid, z []float64, i, conn int, rng *rand.Rand, buf []dem.Neighbor) {
	var nodes []int
	var slopes []float64
	total, bestSlope := 0.0, 0.0
	for _, nb := range neighborsFor(g, i, conn, buf) {
		s := (z[i] - z[nb.Node]) / nb.Dist
		if s <= 0 {
			continue
		}
		nodes = append(nodes, nb.Node)
		slopes = append(slopes, s)
		total += s
		if s > bestSlope {
			bestSlope = s
		}
	}
	if len(nodes) == 0 {
		rt.setSink(i)
		rt.Unrouted++
		return
	}
	pick := rng.Float64() * total
	k := 0
	for ; k < len(nodes)-1; k++ {
		pick -= slopes[k]
		if pick <= 0 {
			break
		}
	}
	rt.Receivers[i] = []int{nodes[k]}
	rt.Proportions[i] = []float64{1}
	rt.Steepest[i] = bestSlope
}

// partition spreads flow over every downslope neighbor with weights
// (contour length * slope)^p: p=1 is Quinn, p=1.1 the Freeman default,
// arbitrary p is Holmgren.
func (rt *Routing) partition(g *dem.Grid, z []float64, i int, p float64, buf []dem.Neighbor) {
	var nodes []int
	var weights []float64
	total, bestSlope := 0.0, 0.0
	for _, nb := range g.D8Neighbors(i, buf[:0]) {
		s := (z[i] - z[nb.Node]) / nb.Dist
		if s <= 0 {
			continue
		}
		contour := cardinalContour
		if nb.Dist > g.Spacing {
			contour = diagonalContour
		}
		w := math.Pow(s*contour, p)
		nodes = append(nodes, nb.Node)
		weights = append(weights, w)
		total += w
		if s > bestSlope {
			bestSlope = s
		}
	}
	if len(nodes) == 0 || total == 0 {
		rt.setSink(i)
		rt.Unrouted++
		return
	}
	for k := range weights {
		weights[k] /= total
	}
	rt.Receivers[i] = nodes
	rt.Proportions[i] = weights
	rt.Steepest[i] = bestSlope
}
