// Package tui is the interactive viewer: one routed grid, re-routed on
// demand as the user cycles metrics and handlers, with the surface, network,
// and discharge views on a shared camera.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ekarst/flowlab/internal/dem"
	"github.com/ekarst/flowlab/internal/flow"
	"github.com/ekarst/flowlab/internal/router"
	"github.com/ekarst/flowlab/internal/viz"
)

const (
	canvasWidth  = 72
	canvasHeight = 22
)

type viewMode int

const (
	viewSurface viewMode = iota
	viewNetwork
	viewDischarge
	viewCount
)

func (v viewMode) String() string {
	switch v {
	case viewSurface:
		return "surface"
	case viewNetwork:
		return "network"
	case viewDischarge:
		return "discharge"
	}
	return "?"
}

// Model drives the viewer. Routing runs synchronously inside Update; grids
// at demo scale route in well under a frame.
type Model struct {
	terrain string
	grid    *dem.Grid
	opts    router.Options

	metricIdx int
	camera    *viz.Camera
	mode      viewMode
	result    *router.Result
	rt        *flow.Routing
	err       error
	showHelp  bool
}

func NewModel(terrain string, g *dem.Grid, opts router.Options) Model {
	m := Model{
		terrain: terrain,
		grid:    g,
		opts:    opts,
		camera:  viz.NewCamera(),
	}
	for i, metric := range flow.Metrics() {
		if string(metric) == opts.Metric {
			m.metricIdx = i
		}
	}
	m.route()
	return m
}

func (m *Model) route() {
	m.opts.Metric = string(flow.Metrics()[m.metricIdx])
	r, err := router.New(m.grid, m.opts)
	if err != nil {
		m.err = err
		return
	}
	res, err := r.RunOneStep(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.result = res
	m.rt = r.Routing()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "m":
		m.metricIdx = (m.metricIdx + 1) % len(flow.Metrics())
		m.route()
	case "M":
		m.metricIdx = (m.metricIdx + len(flow.Metrics()) - 1) % len(flow.Metrics())
		m.route()
	case "d":
		if m.opts.DepressionHandler == router.HandlerFill {
			m.opts.DepressionHandler = router.HandlerBreach
		} else {
			m.opts.DepressionHandler = router.HandlerFill
		}
		m.route()
	case "r":
		m.opts.Seed++
		m.route()
	case "tab":
		m.mode = (m.mode + 1) % viewCount
	case "left":
		m.camera.RotateZ(-0.15)
	case "right":
		m.camera.RotateZ(0.15)
	case "up":
		m.camera.RotateX(-0.1)
	case "down":
		m.camera.RotateX(0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-":
		m.camera.ZoomOut()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	var err error

	switch m.mode {
	case viewSurface:
		body, err = viz.RenderSurface(m.grid, dem.FieldFilled, m.camera, canvasWidth, canvasHeight, 0.6)
	case viewNetwork:
		body, err = viz.RenderNetwork(m.grid, m.rt, canvasWidth, canvasHeight, 0)
	case viewDischarge:
		body, err = viz.RenderFieldMap(m.grid, dem.FieldDischarge, viz.RampWater, canvasWidth*2, true)
	}
	if m.err != nil {
		err = m.err
	}
	if err != nil {
		body = "error: " + err.Error()
	}

	title := viz.Title.Render(fmt.Sprintf("flowlab  %s  [%s]", m.terrain, m.mode))
	main := viz.Panel.Render(body)

	var stats strings.Builder
	line := func(label, value string) {
		stats.WriteString(viz.Label.Render(label))
		stats.WriteString(viz.Value.Render(value))
		stats.WriteByte('\n')
	}
	line("metric", m.opts.Metric)
	line("handler", m.opts.DepressionHandler)
	line("grid", fmt.Sprintf("%dx%d @ %g", m.grid.Rows, m.grid.Cols, m.grid.Spacing))
	if m.result != nil {
		line("conditioned", fmt.Sprintf("%d nodes", m.result.Conditioned))
		line("outlets", fmt.Sprintf("%d", m.result.Outlets))
		line("max area", fmt.Sprintf("%.4g", m.result.MaxArea))
		line("discharge", fmt.Sprintf("%.4g", m.result.SinkDischarge))
	}

	help := "m metric  d handler  tab view  r reseed  arrows rotate  +/- zoom  q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"m/M   cycle flow metric",
			"d     fill <-> breach",
			"tab   surface / network / discharge",
			"r     bump seed and re-route",
			"←→↑↓  rotate 3D camera",
			"+/-   zoom",
			"?     toggle this help",
			"q     quit",
		}, "\n")
	}

	side := viz.Panel.Render(stats.String())
	return title + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, main, side) + "\n" +
		viz.KeyHint.Render(help) + "\n"
}
