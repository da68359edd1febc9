// Package viz renders terminal diagnostics for routed grids: a rotatable 3D
// wireframe of any node field, a plan-view drainage network, and colored
// field maps. Everything draws to text so output composes with lipgloss
// panels in the CLI and the live viewer alike.
package viz
