package viz

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/router"
)

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(4, 2)

	if c.PixelWidth() != 8 || c.PixelHeight() != 8 {
		t.Fatalf("unexpected pixel dims %dx%d", c.PixelWidth(), c.PixelHeight())
	}

	c.Set(0, 0)
	out := c.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if []rune(lines[0])[0] == 0x2800 {
		t.Error("top-left cell should have a lit dot")
	}

	// out-of-range pixels are dropped, not wrapped
	c.Set(-1, 5)
	c.Set(100, 100)

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				t.Fatal("clear left lit dots")
			}
		}
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 19)

	lit := 0
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("line drew nothing")
	}
}

func routedGrid(t *testing.T) (*dem.Grid, *router.Router) {
	t.Helper()
	g, err := dem.Synthesize("tutorial", 12, 12, 10.0, 42)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	r, err := router.New(g, router.DefaultOptions())
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	if _, err := r.RunOneStep(context.Background()); err != nil {
		t.Fatalf("RunOneStep: %v", err)
	}
	return g, r
}

func TestRenderSurface(t *testing.T) {
	g, _ := routedGrid(t)

	out, err := RenderSurface(g, dem.FieldElevation, NewCamera(), 60, 20, 1.0)
	if err != nil {
		t.Fatalf("RenderSurface: %v", err)
	}
	if !strings.Contains(out, "\n") {
		t.Error("expected multi-line output")
	}

	if _, err := RenderSurface(g, "no_such_field", NewCamera(), 60, 20, 1.0); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestRenderNetwork(t *testing.T) {
	g, r := routedGrid(t)

	out, err := RenderNetwork(g, r.Routing(), 40, 20, 0)
	if err != nil {
		t.Fatalf("RenderNetwork: %v", err)
	}
	lit := strings.IndexFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28FF })
	if lit < 0 {
		t.Error("network drew nothing")
	}

	if _, err := RenderNetwork(g, nil, 40, 20, 0); err == nil {
		t.Error("expected error for nil routing")
	}

	// thresholded network is a subset of the full one
	full, _ := RenderNetwork(g, r.Routing(), 40, 20, 0)
	thin, err := RenderNetwork(g, r.Routing(), 40, 20, 5*g.CellArea())
	if err != nil {
		t.Fatalf("thresholded RenderNetwork: %v", err)
	}
	if countLit(thin) > countLit(full) {
		t.Error("threshold increased the drawn network")
	}
}

func countLit(s string) int {
	n := 0
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			n++
		}
	}
	return n
}

func TestRenderFieldMap(t *testing.T) {
	g, _ := routedGrid(t)

	out, err := RenderFieldMap(g, dem.FieldDischarge, RampWater, 80, true)
	if err != nil {
		t.Fatalf("RenderFieldMap: %v", err)
	}
	if out == "" {
		t.Error("empty map")
	}

	if _, err := RenderFieldMap(g, "no_such_field", RampWater, 80, false); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestRampByName(t *testing.T) {
	for _, name := range []string{"water", "terrain", "mono"} {
		if _, err := RampByName(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := RampByName("lava"); err == nil {
		t.Error("expected error for unknown ramp")
	}
}

func TestRampHex(t *testing.T) {
	// xterm-256: 17 is the second blue cube step, 231 the cube's white,
	// 240 a mid grey
	tests := []struct {
		c    lipgloss.Color
		want string
	}{
		{"17", "#00005f"},
		{"231", "#ffffff"},
		{"240", "#585858"},
		{"bogus", "#c0c0c0"},
	}
	for _, tt := range tests {
		r := Ramp{"one", []lipgloss.Color{tt.c}}
		if got := r.Hex(0.5); got != tt.want {
			t.Errorf("color %s: expected %s, got %s", tt.c, tt.want, got)
		}
	}

	if RampWater.Hex(0) == RampWater.Hex(1) {
		t.Error("ramp extremes must differ")
	}
}
