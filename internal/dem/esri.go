package dem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ESRI ASCII grid I/O. The format stores rows north-to-south; node 0 here is
// the lower-left corner, so rows are reversed on the way in and out.

const ascNoData = -9999.0

// ReadASC reads an ESRI ASCII raster into a fresh grid, attaching the values
// as topographic__elevation.
func ReadASC(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeASC(f)
}

func DecodeASC(r io.Reader) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	hdr := map[string]float64{}
	var values []float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && !isNumeric(fields[0]) {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("bad header line %q: %w", line, err)
			}
			hdr[strings.ToLower(fields[0])] = v
			continue
		}
		for _, fs := range fields {
			v, err := strconv.ParseFloat(fs, 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q: %w", fs, err)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := hdr[k]; !ok {
			return nil, fmt.Errorf("missing header %s", k)
		}
	}
	rows, cols := int(hdr["nrows"]), int(hdr["ncols"])
	if len(values) != rows*cols {
		return nil, fmt.Errorf("expected %d values, got %d", rows*cols, len(values))
	}

	g, err := NewGrid(rows, cols, hdr["cellsize"])
	if err != nil {
		return nil, err
	}
	g.OriginX = hdr["xllcorner"]
	g.OriginY = hdr["yllcorner"]

	nodata := ascNoData
	if v, ok := hdr["nodata_value"]; ok {
		nodata = v
	}

	// file order is top row first
	z := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := values[r*cols+c]
			if v == nodata {
				v = 0
			}
			z[(rows-1-r)*cols+c] = v
		}
	}
	g.AddField(FieldElevation, z)
	return g, nil
}

// WriteASC writes one node field of the grid as an ESRI ASCII raster.
func WriteASC(path string, g *Grid, field string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeASC(f, g, field)
}

func EncodeASC(w io.Writer, g *Grid, field string) error {
	z, err := g.Field(field)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner %g\n", g.OriginX)
	fmt.Fprintf(bw, "yllcorner %g\n", g.OriginY)
	fmt.Fprintf(bw, "cellsize %g\n", g.Spacing)
	fmt.Fprintf(bw, "NODATA_value %g\n", ascNoData)
	for r := g.Rows - 1; r >= 0; r-- {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%g", z[g.NodeAt(r, c)])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
