package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekarst/flowlab/internal/dem"
)

func tutorialGrid(t *testing.T) *dem.Grid {
	t.Helper()
	g, err := dem.Synthesize("tutorial", 10, 10, 10.0, 42)
	require.NoError(t, err)
	return g
}

func TestNewValidation(t *testing.T) {
	g := tutorialGrid(t)

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"unknown metric", func(o *Options) { o.Metric = "d16" }},
		{"unknown handler", func(o *Options) { o.DepressionHandler = "ignore" }},
		{"negative epsilon", func(o *Options) { o.Epsilon = -1 }},
		{"missing surface", func(o *Options) { o.Surface = "bedrock__elevation" }},
		{"missing runoff field", func(o *Options) { o.RunoffField = "rain" }},
		{"holmgren without exponent", func(o *Options) {
			o.Metric = "holmgren"
			o.Exponent = 0
		}},
		{"hill metric same as metric", func(o *Options) {
			o.SeparateHillFlow = true
			o.HillMetric = o.Metric
		}},
		{"hill metric connectivity mismatch", func(o *Options) {
			o.Metric = "d4"
			o.SeparateHillFlow = true
			o.HillMetric = "quinn"
		}},
		{"unknown hill metric", func(o *Options) {
			o.SeparateHillFlow = true
			o.HillMetric = "steepest"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if _, err := New(g, opts); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}

	if _, err := New(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil grid")
	}
}

func TestRunOneStepAttachesFields(t *testing.T) {
	g := tutorialGrid(t)
	r, err := New(g, DefaultOptions())
	require.NoError(t, err)

	res, err := r.RunOneStep(context.Background())
	require.NoError(t, err)

	for _, f := range []string{
		dem.FieldFilled,
		dem.FieldDepressionDepth,
		dem.FieldReceiverNode,
		dem.FieldReceiverProportion,
		dem.FieldSteepestSlope,
		dem.FieldDrainageArea,
		dem.FieldDischarge,
	} {
		assert.True(t, g.HasField(f), "missing field %s", f)
	}

	assert.Equal(t, 0, res.Unrouted)
	assert.Greater(t, res.Conditioned, 0, "tutorial surface has pits by construction")
	assert.Greater(t, res.Outlets, 0)
	assert.Greater(t, res.MaxArea, g.CellArea())
	require.NotNil(t, r.Routing())

	// d8 is single-flow: every node carries proportion 1 and interior
	// receivers sit strictly lower on the conditioned surface
	rcv, _ := g.Field(dem.FieldReceiverNode)
	prop, _ := g.Field(dem.FieldReceiverProportion)
	cond, _ := g.Field(dem.FieldFilled)
	for i := range rcv {
		assert.Equal(t, 1.0, prop[i], "node %d", i)
		if j := int(rcv[i]); j != i {
			assert.Less(t, cond[j], cond[i], "receiver of node %d not downslope", i)
		}
	}
}

func TestRunOneStepMassBalance(t *testing.T) {
	g := tutorialGrid(t)
	opts := DefaultOptions()
	opts.RunoffRate = 3.0
	r, err := New(g, opts)
	require.NoError(t, err)

	res, err := r.RunOneStep(context.Background())
	require.NoError(t, err)

	want := 3.0 * float64(g.NumNodes()) * g.CellArea()
	assert.InDelta(t, want, res.SinkDischarge, 1e-6*want)
}

func TestRunOneStepAllMetrics(t *testing.T) {
	for _, metric := range []string{"d8", "d4", "rho8", "rho4", "quinn", "freeman", "holmgren", "dinf"} {
		t.Run(metric, func(t *testing.T) {
			g := tutorialGrid(t)
			opts := DefaultOptions()
			opts.Metric = metric
			if metric == "holmgren" {
				opts.Exponent = 5.0
			}
			r, err := New(g, opts)
			require.NoError(t, err)

			res, err := r.RunOneStep(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, res.Unrouted)
			assert.Greater(t, res.SinkDischarge, 0.0)
		})
	}
}

func TestRunOneStepBreach(t *testing.T) {
	g := tutorialGrid(t)
	z, _ := g.Field(dem.FieldElevation)
	opts := DefaultOptions()
	opts.DepressionHandler = "breach"
	r, err := New(g, opts)
	require.NoError(t, err)

	res, err := r.RunOneStep(context.Background())
	require.NoError(t, err)

	assert.Greater(t, res.Conditioned, 0)
	assert.False(t, g.HasField(dem.FieldDepressionDepth), "breach does not report depths")
	cond, _ := g.Field(dem.FieldFilled)
	for i := range z {
		assert.LessOrEqual(t, cond[i], z[i])
	}
}

func TestRunOneStepSeparateHillFlow(t *testing.T) {
	g := tutorialGrid(t)
	opts := DefaultOptions()
	opts.SeparateHillFlow = true
	opts.HillMetric = "quinn"
	r, err := New(g, opts)
	require.NoError(t, err)

	_, err = r.RunOneStep(context.Background())
	require.NoError(t, err)

	for _, f := range []string{
		dem.HillPrefix + dem.FieldReceiverNode,
		dem.HillPrefix + dem.FieldReceiverProportion,
		dem.HillPrefix + dem.FieldSteepestSlope,
		dem.HillPrefix + dem.FieldDrainageArea,
		dem.HillPrefix + dem.FieldDischarge,
	} {
		assert.True(t, g.HasField(f), "missing field %s", f)
	}
	require.NotNil(t, r.HillRouting())

	// the hillslope pass spreads flow: its peak concentration cannot exceed
	// the channel pass peak on the same surface
	area, _ := g.Field(dem.FieldDrainageArea)
	harea, _ := g.Field(dem.HillPrefix + dem.FieldDrainageArea)
	maxA, maxH := 0.0, 0.0
	for i := range area {
		if area[i] > maxA {
			maxA = area[i]
		}
		if harea[i] > maxH {
			maxH = harea[i]
		}
	}
	assert.GreaterOrEqual(t, maxA, maxH)
}

func TestRunOneStepNoAccumulation(t *testing.T) {
	g := tutorialGrid(t)
	opts := DefaultOptions()
	opts.AccumulateFlow = false
	r, err := New(g, opts)
	require.NoError(t, err)

	_, err = r.RunOneStep(context.Background())
	require.NoError(t, err)
	assert.False(t, g.HasField(dem.FieldDrainageArea))
	assert.False(t, g.HasField(dem.FieldDischarge))
}

func TestRunOneStepCancelled(t *testing.T) {
	g := tutorialGrid(t)
	r, err := New(g, DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RunOneStep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunOneStepRepeatable(t *testing.T) {
	// two routers with the same seed over the same surface agree, even for
	// the stochastic metrics
	opts := DefaultOptions()
	opts.Metric = "rho8"
	opts.Seed = 1234

	ga := tutorialGrid(t)
	gb := tutorialGrid(t)
	ra, err := New(ga, opts)
	require.NoError(t, err)
	rb, err := New(gb, opts)
	require.NoError(t, err)

	_, err = ra.RunOneStep(context.Background())
	require.NoError(t, err)
	_, err = rb.RunOneStep(context.Background())
	require.NoError(t, err)

	qa, _ := ga.Field(dem.FieldDischarge)
	qb, _ := gb.Field(dem.FieldDischarge)
	assert.Equal(t, qa, qb)
}
