package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(14)

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

// Ramp maps a normalized value in [0,1] to a colored block cell.
type Ramp struct {
	Name   string
	Colors []lipgloss.Color
}

var (
	// water: dark blue to white, for discharge and area maps
	RampWater = Ramp{"water", []lipgloss.Color{
		"17", "18", "19", "20", "26", "32", "38", "44", "50", "87", "123", "159", "195", "231",
	}}
	// terrain: green lowlands through browns to white peaks
	RampTerrain = Ramp{"terrain", []lipgloss.Color{
		"22", "28", "34", "40", "106", "142", "136", "130", "94", "101", "137", "180", "223", "255",
	}}
	// mono: plain grey scale
	RampMono = Ramp{"mono", []lipgloss.Color{
		"232", "234", "236", "238", "240", "242", "244", "246", "248", "250", "252", "254",
	}}
)

func RampByName(name string) (Ramp, error) {
	switch name {
	case "water":
		return RampWater, nil
	case "terrain":
		return RampTerrain, nil
	case "mono":
		return RampMono, nil
	}
	return Ramp{}, fmt.Errorf("unknown ramp: %s (water, terrain, mono)", name)
}

// Block renders one map cell for normalized value t.
func (r Ramp) Block(t float64) string {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	idx := int(t * float64(len(r.Colors)-1))
	return lipgloss.NewStyle().Foreground(r.Colors[idx]).Render("██")
}

// Hex returns the sRGB form of the ramp color at normalized t, for writers
// that cannot use terminal palette indices.
func (r Ramp) Hex(t float64) string {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return ansiHex(r.Colors[int(t*float64(len(r.Colors)-1))])
}

// ansiHex converts an xterm-256 palette index to RGB: indices 16-231 are a
// 6x6x6 color cube, 232-255 a grey ramp.
func ansiHex(c lipgloss.Color) string {
	n, err := strconv.Atoi(string(c))
	if err != nil || n < 16 || n > 255 {
		return "#c0c0c0"
	}
	if n >= 232 {
		v := 8 + 10*(n-232)
		return fmt.Sprintf("#%02x%02x%02x", v, v, v)
	}
	n -= 16
	level := func(d int) int {
		if d == 0 {
			return 0
		}
		return 55 + 40*d
	}
	return fmt.Sprintf("#%02x%02x%02x", level(n/36), level(n/6%6), level(n%6))
}

// Legend renders the ramp itself, low to high.
func (r Ramp) Legend() string {
	var sb strings.Builder
	for _, c := range r.Colors {
		sb.WriteString(lipgloss.NewStyle().Foreground(c).Render("█"))
	}
	return sb.String()
}
