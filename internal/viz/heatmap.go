package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/ekarst/flowlab/internal/dem"
)

// RenderFieldMap draws a node field as a colored cell map, one two-column
// block per node, downsampled to fit maxCols terminal columns. Discharge and
// drainage area span orders of magnitude, so logScale is the useful setting
// for them; elevation reads better linear.
func RenderFieldMap(g *dem.Grid, field string, ramp Ramp, maxCols int, logScale bool) (string, error) {
	v, err := g.Field(field)
	if err != nil {
		return "", err
	}

	stride := 1
	for g.Cols/stride*2 > maxCols {
		stride++
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	scaled := make([]float64, len(v))
	for i, x := range v {
		if logScale {
			x = math.Log10(math.Max(x, 1e-12))
		}
		scaled[i] = x
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for r := g.Rows - 1; r >= 0; r -= stride { // north up
		for c := 0; c < g.Cols; c += stride {
			t := (scaled[g.NodeAt(r, c)] - lo) / span
			sb.WriteString(ramp.Block(t))
		}
		sb.WriteByte('\n')
	}

	legend := fmt.Sprintf("%s  [%s]", field, ramp.Legend())
	if logScale {
		legend += fmt.Sprintf("  log10 %.2f .. %.2f", lo, hi)
	} else {
		legend += fmt.Sprintf("  %.3g .. %.3g", lo, hi)
	}
	sb.WriteString(Subtle.Render(legend))
	sb.WriteByte('\n')
	return sb.String(), nil
}
