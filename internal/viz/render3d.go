package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Camera projects world coordinates onto the canvas: rotate, zoom, then a
// simple perspective divide against a fixed eye distance.
type Camera struct {
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	// a slightly tipped view reads as terrain immediately
	return &Camera{Distance: 50, RotX: -1.0, RotZ: 0.3, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) rotate(p Vec3) Vec3 {
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project returns pixel coordinates, view depth, and whether the point lands
// on a canvas of pw x ph pixels.
func (c *Camera) Project(p Vec3, pw, ph int) (int, int, float64, bool) {
	rot := c.rotate(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - rot.Z)
	scale := float64(min(pw, ph)) / 3.0
	x := int(rot.X*persp*scale) + pw/2
	y := int(-rot.Y*persp*scale) + ph/2
	return x, y, rot.Z, x >= 0 && x < pw && y >= 0 && y < ph
}

type Edge struct {
	A, B Vec3
}

// Wireframe is a depth-sorted edge soup.
type Wireframe struct {
	Edges []Edge
}

func (w *Wireframe) Add(a, b Vec3) { w.Edges = append(w.Edges, Edge{a, b}) }

// Render draws the wireframe onto the canvas back-to-front.
func (w *Wireframe) Render(c *Canvas, cam *Camera) {
	type projected struct {
		x1, y1, x2, y2 int
		depth          float64
	}
	pw, ph := c.PixelWidth(), c.PixelHeight()
	proj := make([]projected, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.A, pw, ph)
		x2, y2, d2, v2 := cam.Project(e.B, pw, ph)
		if v1 || v2 {
			proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}
