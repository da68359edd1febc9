package viz

import (
	"fmt"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/flow"
)

// RenderNetwork draws the drainage network in plan view: a line from every
// node to each of its receivers. minArea hides hillslope links, leaving the
// channel network: only links whose upstream node drains at least that many
// square units are drawn.
func RenderNetwork(g *dem.Grid, rt *flow.Routing, width, height int, minArea float64) (string, error) {
	c, err := NetworkCanvas(g, rt, width, height, minArea)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// NetworkCanvas draws the network onto a fresh canvas for callers that need
// the dot grid itself rather than terminal output.
func NetworkCanvas(g *dem.Grid, rt *flow.Routing, width, height int, minArea float64) (*Canvas, error) {
	if rt == nil {
		return nil, fmt.Errorf("no routing to draw; run the router first")
	}

	var area []float64
	if minArea > 0 {
		a, err := g.Field(dem.FieldDrainageArea)
		if err != nil {
			return nil, fmt.Errorf("--min-area needs accumulated flow: %w", err)
		}
		area = a
	}

	c := NewCanvas(width, height)
	pw, ph := c.PixelWidth(), c.PixelHeight()
	sx := float64(g.Cols-1) * g.Spacing
	sy := float64(g.Rows-1) * g.Spacing

	px := func(node int) (int, int) {
		x, y := g.NodeXY(node)
		// plan view, north up
		return int((x - g.OriginX) / sx * float64(pw-1)),
			(ph - 1) - int((y-g.OriginY)/sy*float64(ph-1))
	}

	for i := 0; i < g.NumNodes(); i++ {
		if rt.IsSink(i) {
			continue
		}
		if area != nil && area[i] < minArea {
			continue
		}
		x0, y0 := px(i)
		for _, rcv := range rt.Receivers[i] {
			x1, y1 := px(rcv)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	return c, nil
}
