// Package store persists router runs under a data directory, one directory
// per run holding metadata.json and the grid's node fields as CSV.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/router"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunSummary is the part of a router.Result worth keeping.
type RunSummary struct {
	Conditioned   int     `json:"conditioned"`
	Unrouted      int     `json:"unrouted"`
	Outlets       int     `json:"outlets"`
	MaxArea       float64 `json:"max_area"`
	SinkDischarge float64 `json:"sink_discharge"`
}

type RunMetadata struct {
	ID        string         `json:"id"`
	Terrain   string         `json:"terrain"`
	Timestamp time.Time      `json:"timestamp"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Spacing   float64        `json:"spacing"`
	OriginX   float64        `json:"origin_x"`
	OriginY   float64        `json:"origin_y"`
	Options   router.Options `json:"options"`
	Summary   RunSummary     `json:"summary"`
}

// Save writes one routed grid. The run id is terrain plus unix time, unique
// enough for a lab tool.
func (s *Store) Save(terrain string, g *dem.Grid, opts router.Options, res *router.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", terrain, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Terrain:   terrain,
		Timestamp: time.Now(),
		Rows:      g.Rows,
		Cols:      g.Cols,
		Spacing:   g.Spacing,
		OriginX:   g.OriginX,
		OriginY:   g.OriginY,
		Options:   opts,
	}
	if res != nil {
		meta.Summary = RunSummary{
			Conditioned:   res.Conditioned,
			Unrouted:      res.Unrouted,
			Outlets:       res.Outlets,
			MaxArea:       res.MaxArea,
			SinkDischarge: res.SinkDischarge,
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeFields(filepath.Join(runDir, "fields.csv"), g); err != nil {
		return "", err
	}
	logrus.Debugf("saved run %s (%d fields)", runID, len(g.FieldNames()))
	return runID, nil
}

func (s *Store) writeFields(path string, g *dem.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names := g.FieldNames()
	sort.Strings(names)

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"node", "row", "col"}
	header = append(header, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for n := 0; n < g.NumNodes(); n++ {
		r, c := g.RowCol(n)
		row := []string{
			strconv.Itoa(n),
			strconv.Itoa(r),
			strconv.Itoa(c),
		}
		for _, name := range names {
			v, _ := g.Field(name)
			row = append(row, strconv.FormatFloat(v[n], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadGrid rebuilds the grid of a saved run with every persisted field
// attached.
func (s *Store) LoadGrid(runID string) (*dem.Grid, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	g, err := dem.NewGrid(meta.Rows, meta.Cols, meta.Spacing)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s has a bad grid definition: %w", runID, err)
	}
	g.OriginX, g.OriginY = meta.OriginX, meta.OriginY

	f, err := os.Open(filepath.Join(s.baseDir, runID, "fields.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) != g.NumNodes()+1 {
		return nil, nil, fmt.Errorf("run %s: expected %d node rows, got %d", runID, g.NumNodes(), len(records)-1)
	}

	header := records[0]
	for col := 3; col < len(header); col++ {
		values := make([]float64, g.NumNodes())
		for i := 1; i < len(records); i++ {
			v, err := strconv.ParseFloat(records[i][col], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s field %s row %d: %w", runID, header[col], i, err)
			}
			node, err := strconv.Atoi(records[i][0])
			if err != nil || node < 0 || node >= g.NumNodes() {
				return nil, nil, fmt.Errorf("run %s: bad node id %q", runID, records[i][0])
			}
			values[node] = v
		}
		g.AddField(header[col], values)
	}
	return g, meta, nil
}
