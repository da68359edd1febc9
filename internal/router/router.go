// Package router wraps the flow core behind the one-call surface the demo
// commands use: construct with named options, RunOneStep, read fields off
// the grid.
package router

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/flow"
)

// Depression handler names.
const (
	HandlerFill   = "fill"
	HandlerBreach = "breach"
)

// Options configure a Router. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Surface           string  `yaml:"surface"`
	Metric            string  `yaml:"metric"`
	Exponent          float64 `yaml:"exponent"`
	DepressionHandler string  `yaml:"depression_handler"`
	Epsilon           float64 `yaml:"epsilon"`
	AccumulateFlow    bool    `yaml:"accumulate_flow"`
	RunoffRate        float64 `yaml:"runoff_rate"`
	RunoffField       string  `yaml:"runoff_field"`
	SeparateHillFlow  bool    `yaml:"separate_hill_flow"`
	HillMetric        string  `yaml:"hill_metric"`
	HillExponent      float64 `yaml:"hill_exponent"`
	Seed              int64   `yaml:"seed"`
}

func DefaultOptions() Options {
	return Options{
		Surface:           dem.FieldElevation,
		Metric:            string(flow.D8),
		Exponent:          1.1,
		DepressionHandler: HandlerFill,
		Epsilon:           1e-4,
		AccumulateFlow:    true,
		RunoffRate:        1.0,
		HillMetric:        string(flow.Quinn),
		HillExponent:      1.0,
	}
}

// Result summarises one RunOneStep invocation.
type Result struct {
	Metric        string
	Handler       string
	Conditioned   int // nodes raised (fill) or carved (breach)
	Unrouted      int
	Outlets       int
	MaxArea       float64
	MaxAreaNode   int
	SinkDischarge float64
	ConditionTime time.Duration
	DirectTime    time.Duration
	AccumTime     time.Duration
}

// Router routes flow over one grid. A router keeps no per-step state beyond
// its RNG; RunOneStep re-derives everything from the current surface, so
// editing the elevation field between steps is fine.
type Router struct {
	grid   *dem.Grid
	opts   Options
	metric flow.Metric
	hill   flow.Metric
	rng    *rand.Rand

	routing     *flow.Routing
	hillRouting *flow.Routing
}

func New(g *dem.Grid, opts Options) (*Router, error) {
	if g == nil {
		return nil, fmt.Errorf("router needs a grid")
	}
	if opts.Surface == "" {
		opts.Surface = dem.FieldElevation
	}
	if !g.HasField(opts.Surface) {
		return nil, fmt.Errorf("grid has no surface field %q", opts.Surface)
	}

	metric, err := flow.ParseMetric(opts.Metric)
	if err != nil {
		return nil, err
	}
	if opts.DepressionHandler != HandlerFill && opts.DepressionHandler != HandlerBreach {
		return nil, fmt.Errorf("unknown depression handler: %s (fill or breach)", opts.DepressionHandler)
	}
	if opts.Epsilon < 0 {
		return nil, fmt.Errorf("epsilon must be >= 0, got %g", opts.Epsilon)
	}
	if opts.Exponent <= 0 && (metric == flow.Freeman || metric == flow.Holmgren) {
		return nil, fmt.Errorf("metric %s needs a positive exponent, got %g", metric, opts.Exponent)
	}
	if opts.RunoffField != "" && !g.HasField(opts.RunoffField) {
		return nil, fmt.Errorf("grid has no runoff field %q", opts.RunoffField)
	}

	r := &Router{
		grid:   g,
		opts:   opts,
		metric: metric,
		rng:    rand.New(rand.NewSource(opts.Seed)),
	}

	if opts.SeparateHillFlow {
		hill, err := flow.ParseMetric(opts.HillMetric)
		if err != nil {
			return nil, fmt.Errorf("hill metric: %w", err)
		}
		if hill == metric {
			return nil, fmt.Errorf("separate hill flow with identical metric %s is a no-op", hill)
		}
		if hill.Connectivity() != metric.Connectivity() {
			return nil, fmt.Errorf("hill metric %s and metric %s condition different neighborhoods", hill, metric)
		}
		if opts.HillExponent <= 0 && (hill == flow.Freeman || hill == flow.Holmgren) {
			return nil, fmt.Errorf("hill metric %s needs a positive exponent", hill)
		}
		r.hill = hill
	}
	return r, nil
}

func (r *Router) Grid() *dem.Grid { return r.grid }

func (r *Router) Options() Options { return r.opts }

// Routing returns the receiver topology from the last step, nil before the
// first.
func (r *Router) Routing() *flow.Routing { return r.routing }

// HillRouting returns the hillslope topology from the last step, nil unless
// SeparateHillFlow is set.
func (r *Router) HillRouting() *flow.Routing { return r.hillRouting }

// RunOneStep conditions the surface, assigns receivers, and (unless turned
// off) accumulates drainage area and discharge, attaching the output fields
// to the grid. It is safe to call repeatedly.
func (r *Router) RunOneStep(ctx context.Context) (*Result, error) {
	z, err := r.grid.Field(r.opts.Surface)
	if err != nil {
		return nil, err
	}
	res := &Result{Metric: string(r.metric), Handler: r.opts.DepressionHandler}

	start := time.Now()
	var cond []float64
	switch r.opts.DepressionHandler {
	case HandlerFill:
		var depth []float64
		cond, depth, res.Conditioned = flow.FillDepressions(r.grid, z, r.opts.Epsilon, r.metric.Connectivity())
		r.grid.AddField(dem.FieldDepressionDepth, depth)
	case HandlerBreach:
		cond, res.Conditioned = flow.BreachDepressions(r.grid, z, r.opts.Epsilon, r.metric.Connectivity())
	}
	r.grid.AddField(dem.FieldFilled, cond)
	res.ConditionTime = time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	rt, err := flow.Direct(r.grid, cond, r.metric, r.opts.Exponent, r.rng)
	if err != nil {
		return nil, err
	}
	r.routing = rt
	res.Unrouted = rt.Unrouted
	res.DirectTime = time.Since(start)
	rn, rp := rt.ReceiverFields()
	r.grid.AddField(dem.FieldReceiverNode, rn)
	r.grid.AddField(dem.FieldReceiverProportion, rp)
	r.grid.AddField(dem.FieldSteepestSlope, rt.Steepest)
	if rt.Unrouted > 0 {
		logrus.Warnf("%d interior nodes have no downslope neighbor (epsilon=%g)", rt.Unrouted, r.opts.Epsilon)
	}

	if r.opts.SeparateHillFlow {
		hrt, err := flow.Direct(r.grid, cond, r.hill, r.opts.HillExponent, r.rng)
		if err != nil {
			return nil, err
		}
		r.hillRouting = hrt
		hn, hp := hrt.ReceiverFields()
		r.grid.AddField(dem.HillPrefix+dem.FieldReceiverNode, hn)
		r.grid.AddField(dem.HillPrefix+dem.FieldReceiverProportion, hp)
		r.grid.AddField(dem.HillPrefix+dem.FieldSteepestSlope, hrt.Steepest)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.opts.AccumulateFlow {
		start = time.Now()
		runoff := r.runoff()
		area, q, totals := flow.Accumulate(r.grid, rt, cond, runoff)
		r.grid.AddField(dem.FieldDrainageArea, area)
		r.grid.AddField(dem.FieldDischarge, q)
		res.Outlets = totals.Outlets
		res.MaxArea = totals.MaxArea
		res.MaxAreaNode = totals.MaxAreaNode
		res.SinkDischarge = totals.SinkOut
		res.AccumTime = time.Since(start)

		if r.opts.SeparateHillFlow {
			harea, hq, _ := flow.Accumulate(r.grid, r.hillRouting, cond, runoff)
			r.grid.AddField(dem.HillPrefix+dem.FieldDrainageArea, harea)
			r.grid.AddField(dem.HillPrefix+dem.FieldDischarge, hq)
		}
	}

	logrus.Debugf("routed %s/%s: conditioned=%d unrouted=%d outlets=%d",
		res.Metric, res.Handler, res.Conditioned, res.Unrouted, res.Outlets)
	return res, nil
}

// runoff resolves the per-node runoff rate field, building a uniform one
// from RunoffRate when no field is named.
func (r *Router) runoff() []float64 {
	if r.opts.RunoffField != "" {
		v, _ := r.grid.Field(r.opts.RunoffField)
		return v
	}
	if r.opts.RunoffRate == 1.0 {
		return nil // unit rate, Accumulate's default
	}
	rate := make([]float64, r.grid.NumNodes())
	for i := range rate {
		rate[i] = r.opts.RunoffRate
	}
	r.grid.AddField(dem.FieldRunoffRate, rate)
	return rate
}
