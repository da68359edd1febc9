package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/ekarst/flowlab/internal/dem"
)

// ExportJSON writes a run as one self-contained JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, g *dem.Grid) error {
	fields := make(map[string][]float64)
	for _, name := range g.FieldNames() {
		v, _ := g.Field(name)
		fields[name] = v
	}
	doc := struct {
		Meta   *RunMetadata         `json:"meta"`
		Fields map[string][]float64 `json:"fields"`
	}{meta, fields}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportCSV streams a run's node fields in the same layout fields.csv uses.
func ExportCSV(w io.Writer, g *dem.Grid) error {
	names := g.FieldNames()
	sort.Strings(names)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"node", "row", "col"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for n := 0; n < g.NumNodes(); n++ {
		r, c := g.RowCol(n)
		row := []string{strconv.Itoa(n), strconv.Itoa(r), strconv.Itoa(c)}
		for _, name := range names {
			v, _ := g.Field(name)
			row = append(row, strconv.FormatFloat(v[n], 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// ExportASC writes one field as an ESRI ASCII raster, which is the exchange
// format GIS tools ingest directly.
func ExportASC(w io.Writer, g *dem.Grid, field string) error {
	return dem.EncodeASC(w, g, field)
}
