package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/router"
	"github.com/ekarst/flowlab/internal/viz"
)

func routedGrid(t *testing.T) (*dem.Grid, *router.Router, *router.Result) {
	t.Helper()
	g, err := dem.Synthesize("tutorial", 8, 8, 10.0, 42)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	r, err := router.New(g, router.DefaultOptions())
	if err != nil {
		t.Fatalf("router.New: %v", err)
	}
	res, err := r.RunOneStep(context.Background())
	if err != nil {
		t.Fatalf("RunOneStep: %v", err)
	}
	return g, r, res
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g, r, res := routedGrid(t)

	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := s.Save("tutorial", g, r.Options(), res)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(runID, "tutorial_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Terrain != "tutorial" || meta.Rows != 8 || meta.Cols != 8 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Options.Metric != "d8" {
		t.Errorf("options not persisted: %+v", meta.Options)
	}
	if meta.Summary.Outlets != res.Outlets {
		t.Errorf("summary not persisted: %+v", meta.Summary)
	}

	g2, _, err := s.LoadGrid(runID)
	if err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	for _, name := range g.FieldNames() {
		v1, _ := g.Field(name)
		v2, err := g2.Field(name)
		if err != nil {
			t.Fatalf("field %s missing after reload", name)
		}
		for i := range v1 {
			// fields.csv keeps 6 decimals
			if d := v1[i] - v2[i]; d > 1e-6 || d < -1e-6 {
				t.Fatalf("field %s node %d: %g != %g", name, i, v1[i], v2[i])
			}
		}
	}
}

func TestLoadGridRowCountMismatch(t *testing.T) {
	g, r, res := routedGrid(t)

	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	runID, err := s.Save("tutorial", g, r.Options(), res)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// drop the last node row
	path := filepath.Join(s.baseDir, runID, "fields.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	trimmed = trimmed[:strings.LastIndexByte(trimmed, '\n')+1]
	if err := os.WriteFile(path, []byte(trimmed), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, _, err = s.LoadGrid(runID)
	if err == nil {
		t.Fatal("expected error for truncated fields file")
	}
	// both counts in the message are node rows, header excluded
	want := fmt.Sprintf("expected %d node rows, got %d", g.NumNodes(), g.NumNodes()-1)
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not report %q", err, want)
	}
}

func TestListEmptyAndMissingDir(t *testing.T) {
	s := New(t.TempDir() + "/does-not-exist")
	runs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := s.Load("tutorial_0"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestListReturnsSavedRuns(t *testing.T) {
	g, r, res := routedGrid(t)

	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := s.Save("tutorial", g, r.Options(), res); err != nil {
		t.Fatalf("Save: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestExportCSVAndJSON(t *testing.T) {
	g, r, _ := routedGrid(t)

	var csvOut strings.Builder
	if err := ExportCSV(&csvOut, g); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Count(csvOut.String(), "\n")
	if lines != g.NumNodes()+1 {
		t.Errorf("expected %d csv lines, got %d", g.NumNodes()+1, lines)
	}
	if !strings.Contains(csvOut.String(), dem.FieldDischarge) {
		t.Error("csv header missing discharge field")
	}

	meta := &RunMetadata{ID: "tutorial_1", Terrain: "tutorial", Options: r.Options()}
	var jsonOut strings.Builder
	if err := ExportJSON(&jsonOut, meta, g); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(jsonOut.String(), dem.FieldDrainageArea) {
		t.Error("json missing drainage area field")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)

	svg := CanvasToSVG(c, viz.RampWater, 4)
	if !strings.HasPrefix(svg, "<?xml") {
		t.Error("not an svg document")
	}
	if !strings.Contains(svg, "<circle") {
		t.Error("no dots rendered")
	}
	// a full-height diagonal must pick up more than one ramp color
	fills := map[string]bool{}
	for _, m := range regexp.MustCompile(`fill="#[0-9a-f]{6}"`).FindAllString(svg, -1) {
		fills[m] = true
	}
	if len(fills) < 2 {
		t.Errorf("expected a graded ramp, got %d colors", len(fills))
	}
	if CanvasToSVG(nil, viz.RampWater, 4) != "" {
		t.Error("nil canvas should render empty")
	}
}
