// Package flow is the numerical core behind the router: depression
// conditioning of a raster surface, per-node flow-direction assignment under
// eight named metrics, and downslope accumulation of area and discharge.
//
// Everything operates on node fields of a dem.Grid. Surfaces are conditioned
// first (fill or breach) so that every interior node has a strictly
// descending path to the perimeter; direction metrics then only ever look one
// cell outward, and accumulation is a single sweep in elevation order.
package flow
