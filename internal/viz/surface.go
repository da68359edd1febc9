package viz

import (
	"github.com/ekarst/flowlab/internal/dem"
)

// SurfaceWireframe meshes one node field of a grid into row and column
// polylines, normalized to a unit-ish cube so the camera defaults work for
// any grid. stride subsamples large grids (0 means auto, about 40 lines per
// axis); exaggeration stretches the vertical axis.
func SurfaceWireframe(g *dem.Grid, field string, stride int, exaggeration float64) (*Wireframe, error) {
	z, err := g.Field(field)
	if err != nil {
		return nil, err
	}
	if stride <= 0 {
		stride = 1
		for (g.Rows-1)/stride > 40 || (g.Cols-1)/stride > 40 {
			stride++
		}
	}
	if exaggeration <= 0 {
		exaggeration = 1
	}

	zmin, zmax := z[0], z[0]
	for _, v := range z {
		if v < zmin {
			zmin = v
		}
		if v > zmax {
			zmax = v
		}
	}
	zrange := zmax - zmin
	if zrange == 0 {
		zrange = 1
	}

	sx := float64(g.Cols-1) * g.Spacing
	sy := float64(g.Rows-1) * g.Spacing
	span := sx
	if sy > span {
		span = sy
	}

	point := func(node int) Vec3 {
		x, y := g.NodeXY(node)
		return Vec3{
			X: (x - g.OriginX - sx/2) / span * 2,
			Y: (y - g.OriginY - sy/2) / span * 2,
			Z: (z[node] - zmin) / zrange * exaggeration,
		}
	}

	wf := &Wireframe{}
	for r := 0; r < g.Rows; r += stride {
		for c := 0; c+stride < g.Cols; c += stride {
			wf.Add(point(g.NodeAt(r, c)), point(g.NodeAt(r, c+stride)))
		}
	}
	for c := 0; c < g.Cols; c += stride {
		for r := 0; r+stride < g.Rows; r += stride {
			wf.Add(point(g.NodeAt(r, c)), point(g.NodeAt(r+stride, c)))
		}
	}
	return wf, nil
}

// RenderSurface is the one-call version used by the CLI: mesh, project, draw.
func RenderSurface(g *dem.Grid, field string, cam *Camera, width, height int, exaggeration float64) (string, error) {
	wf, err := SurfaceWireframe(g, field, 0, exaggeration)
	if err != nil {
		return "", err
	}
	c := NewCanvas(width, height)
	wf.Render(c, cam)
	return c.String(), nil
}
