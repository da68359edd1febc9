package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/router"
)

func routedGrid(t *testing.T) *dem.Grid {
	t.Helper()
	g, err := dem.Synthesize("tutorial", 20, 20, 10.0, 42)
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
	return g
}

func TestHypsometryCurveShape(t *testing.T) {
	g := routedGrid(t)

	relArea, relElev, err := Hypsometry(g, dem.FieldElevation, 20)
	if err != nil {
		t.Fatalf("Hypsometry: %v", err)
	}
	if len(relArea) != 20 || len(relElev) != 20 {
		t.Fatalf("expected 20 bins, got %d/%d", len(relArea), len(relElev))
	}

	if relArea[0] != 1.0 {
		t.Errorf("all area lies above the minimum, got %g", relArea[0])
	}
	for i := 1; i < len(relArea); i++ {
		if relArea[i] > relArea[i-1] {
			t.Fatalf("curve must be non-increasing, bin %d", i)
		}
	}
}

func TestHypsometricIntegralBounds(t *testing.T) {
	g := routedGrid(t)

	hi, err := HypsometricIntegral(g, dem.FieldElevation)
	if err != nil {
		t.Fatalf("HypsometricIntegral: %v", err)
	}
	if hi <= 0 || hi >= 1 {
		t.Errorf("integral must lie in (0,1), got %g", hi)
	}

	// a flat surface has no hypsometry
	flat, _ := dem.NewGrid(5, 5, 1.0)
	flat.AddZeros("flat")
	if _, err := HypsometricIntegral(flat, "flat"); err == nil {
		t.Error("expected error for flat field")
	}
}

func TestSlopeAreaFit(t *testing.T) {
	g := routedGrid(t)

	_, theta, n, err := SlopeArea(g)
	if err != nil {
		t.Fatalf("SlopeArea: %v", err)
	}
	if n < 10 {
		t.Errorf("expected a usable sample, got %d points", n)
	}
	if math.IsNaN(theta) {
		t.Error("theta is NaN")
	}

	// unrouted grid has no slope or area fields yet
	raw, _ := dem.Synthesize("tutorial", 10, 10, 10.0, 1)
	if _, _, _, err := SlopeArea(raw); err == nil {
		t.Error("expected error without routed fields")
	}
}

func TestSummarize(t *testing.T) {
	g := routedGrid(t)

	s, err := Summarize(g, dem.FieldDrainageArea)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Min < g.CellArea() {
		t.Errorf("minimum drainage area below one cell: %g", s.Min)
	}
	if s.Max <= s.Min || s.Mean < s.Min || s.Mean > s.Max {
		t.Errorf("inconsistent summary: %+v", s)
	}

	if _, err := Summarize(g, "no_such_field"); err == nil {
		t.Error("expected error for missing field")
	}
}
