package dem

import (
	"fmt"
	"math"
)

// Standard field names attached to a grid by the router.
const (
	FieldElevation          = "topographic__elevation"
	FieldFilled             = "depression_free__elevation"
	FieldDepressionDepth    = "depression__depth"
	FieldReceiverNode       = "flow__receiver_node"
	FieldReceiverProportion = "flow__receiver_proportions"
	FieldSteepestSlope      = "topographic__steepest_slope"
	FieldDrainageArea       = "drainage_area"
	FieldDischarge          = "surface_water__discharge"
	FieldRunoffRate         = "water__unit_flux_in"
)

// HillPrefix marks output fields of the secondary hillslope routing pass.
const HillPrefix = "hill_"

// Grid is a regular raster with row-major node indexing. Node 0 sits at the
// lower-left origin; node r*Cols+c is row r, column c. Perimeter nodes are
// open boundaries.
type Grid struct {
	Rows, Cols int
	Spacing    float64
	OriginX    float64
	OriginY    float64

	fields map[string][]float64
}

func NewGrid(rows, cols int, spacing float64) (*Grid, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("grid must be at least 3x3, got %dx%d", rows, cols)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("spacing must be positive, got %f", spacing)
	}
	return &Grid{
		Rows:    rows,
		Cols:    cols,
		Spacing: spacing,
		fields:  make(map[string][]float64),
	}, nil
}

func (g *Grid) NumNodes() int { return g.Rows * g.Cols }

// CellArea is the plan area drained by a single node.
func (g *Grid) CellArea() float64 { return g.Spacing * g.Spacing }

func (g *Grid) NodeAt(row, col int) int { return row*g.Cols + col }

func (g *Grid) RowCol(node int) (int, int) { return node / g.Cols, node % g.Cols }

func (g *Grid) NodeXY(node int) (float64, float64) {
	r, c := g.RowCol(node)
	return g.OriginX + float64(c)*g.Spacing, g.OriginY + float64(r)*g.Spacing
}

func (g *Grid) IsBoundary(node int) bool {
	r, c := g.RowCol(node)
	return r == 0 || c == 0 || r == g.Rows-1 || c == g.Cols-1
}

// AddField attaches values under name. The slice is held, not copied.
func (g *Grid) AddField(name string, values []float64) error {
	if len(values) != g.NumNodes() {
		return fmt.Errorf("field %q has %d values, grid has %d nodes", name, len(values), g.NumNodes())
	}
	g.fields[name] = values
	return nil
}

// AddZeros attaches a zeroed field under name and returns it.
func (g *Grid) AddZeros(name string) []float64 {
	v := make([]float64, g.NumNodes())
	g.fields[name] = v
	return v
}

func (g *Grid) Field(name string) ([]float64, error) {
	v, ok := g.fields[name]
	if !ok {
		return nil, fmt.Errorf("grid has no field %q", name)
	}
	return v, nil
}

func (g *Grid) HasField(name string) bool {
	_, ok := g.fields[name]
	return ok
}

func (g *Grid) FieldNames() []string {
	names := make([]string, 0, len(g.fields))
	for name := range g.fields {
		names = append(names, name)
	}
	return names
}

// Neighbor is an adjacent node together with the link length to it.
type Neighbor struct {
	Node int
	Dist float64
}

// d8 offsets, cardinals first
var d8dr = [8]int{0, 1, 0, -1, 1, 1, -1, -1}
var d8dc = [8]int{1, 0, -1, 0, 1, -1, 1, -1}

// D4Neighbors appends the up-to-4 orthogonal neighbors of node to buf.
func (g *Grid) D4Neighbors(node int, buf []Neighbor) []Neighbor {
	r, c := g.RowCol(node)
	for k := 0; k < 4; k++ {
		rr, cc := r+d8dr[k], c+d8dc[k]
		if rr < 0 || cc < 0 || rr >= g.Rows || cc >= g.Cols {
			continue
		}
		buf = append(buf, Neighbor{g.NodeAt(rr, cc), g.Spacing})
	}
	return buf
}

// D8Neighbors appends the up-to-8 neighbors of node to buf. Diagonal link
// lengths are Spacing*sqrt(2).
func (g *Grid) D8Neighbors(node int, buf []Neighbor) []Neighbor {
	r, c := g.RowCol(node)
	diag := g.Spacing * math.Sqrt2
	for k := 0; k < 8; k++ {
		rr, cc := r+d8dr[k], c+d8dc[k]
		if rr < 0 || cc < 0 || rr >= g.Rows || cc >= g.Cols {
			continue
		}
		d := g.Spacing
		if k >= 4 {
			d = diag
		}
		buf = append(buf, Neighbor{g.NodeAt(rr, cc), d})
	}
	return buf
}

// NodeAtOffset returns the node dr rows and dc columns away, if inside the grid.
func (g *Grid) NodeAtOffset(node, dr, dc int) (int, bool) {
	r, c := g.RowCol(node)
	rr, cc := r+dr, c+dc
	if rr < 0 || cc < 0 || rr >= g.Rows || cc >= g.Cols {
		return -1, false
	}
	return g.NodeAt(rr, cc), true
}
