package flow

import (
	"container/heap"

	"github.com/ekarst/flowlab/internal/dem"
)

// flood frontier, ordered by surface elevation; seq keeps pop order stable.
type floodItem struct {
	node int
	z    float64
	seq  int
}

type floodHeap []floodItem

func (h floodHeap) Len() int { return len(h) }
func (h floodHeap) Less(i, j int) bool {
	if h[i].z != h[j].z {
		return h[i].z < h[j].z
	}
	return h[i].seq < h[j].seq
}
func (h floodHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *floodHeap) Push(x any)   { *h = append(*h, x.(floodItem)) }
func (h *floodHeap) Pop() any     { old := *h; n := len(old); it := old[n-1]; *h = old[:n-1]; return it }

func neighborsFor(g *dem.Grid, node, conn int, buf []dem.Neighbor) []dem.Neighbor {
	if conn == 4 {
		return g.D4Neighbors(node, buf[:0])
	}
	return g.D8Neighbors(node, buf[:0])
}

// FillDepressions runs a priority flood over the surface z: the returned
// surface equals z outside depressions and is raised to the spill elevation
// (plus an eps increment per cell) inside them. depth is filled minus
// original; filled counts the raised nodes. With eps == 0 flats survive and
// downstream routing may leave unrouted nodes.
func FillDepressions(g *dem.Grid, z []float64, eps float64, conn int) (out, depth []float64, filled int) {
	n := g.NumNodes()
	out = make([]float64, n)
	copy(out, z)
	depth = make([]float64, n)
	visited := make([]bool, n)

	h := make(floodHeap, 0, n)
	seq := 0
	for i := 0; i < n; i++ {
		if g.IsBoundary(i) {
			visited[i] = true
			h = append(h, floodItem{i, out[i], seq})
			seq++
		}
	}
	heap.Init(&h)

	buf := make([]dem.Neighbor, 0, 8)
	for h.Len() > 0 {
		it := heap.Pop(&h).(floodItem)
		for _, nb := range neighborsFor(g, it.node, conn, buf) {
			if visited[nb.Node] {
				continue
			}
			visited[nb.Node] = true
			min := out[it.node] + eps
			if out[nb.Node] < min {
				out[nb.Node] = min
				depth[nb.Node] = min - z[nb.Node]
				filled++
			}
			heap.Push(&h, floodItem{nb.Node, out[nb.Node], seq})
			seq++
		}
	}
	return out, depth, filled
}

// BreachDepressions conditions the surface by carving instead of raising:
// the flood traversal keeps spill-path parents, and when it steps down into
// a depression the barrier cells along the parent chain are lowered until
// the path out is strictly descending. Cells are only ever lowered.
func BreachDepressions(g *dem.Grid, z []float64, eps float64, conn int) (out []float64, carved int) {
	n := g.NumNodes()
	out = make([]float64, n)
	copy(out, z)
	visited := make([]bool, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	h := make(floodHeap, 0, n)
	seq := 0
	for i := 0; i < n; i++ {
		if g.IsBoundary(i) {
			visited[i] = true
			h = append(h, floodItem{i, out[i], seq})
			seq++
		}
	}
	heap.Init(&h)

	buf := make([]dem.Neighbor, 0, 8)
	for h.Len() > 0 {
		it := heap.Pop(&h).(floodItem)
		for _, nb := range neighborsFor(g, it.node, conn, buf) {
			if visited[nb.Node] {
				continue
			}
			visited[nb.Node] = true
			parent[nb.Node] = it.node
			if out[nb.Node] < out[it.node] {
				// nb sits below its spill: lower the barrier chain back
				// toward the perimeter until it drains
				target := out[nb.Node]
				for p := it.node; p != -1; p = parent[p] {
					target -= eps
					if out[p] <= target {
						break
					}
					out[p] = target
					carved++
				}
			}
			heap.Push(&h, floodItem{nb.Node, out[nb.Node], seq})
			seq++
		}
	}
	return out, carved
}
