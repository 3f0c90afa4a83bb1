// Package geometry implements surface geometry managers: objects that
// intersect ray bundles with a surface shape positioned by a frame.
//
// A manager works in cycles. FindIntersections starts a cycle and
// returns the parametric hit distance for every ray, with +Inf for
// misses. The caller then narrows the cycle to the rays it owns with
// SelectRays, reads Normals and IntersectionPointsGlobal for those
// rays, and ends the cycle with Done. Calling a stage out of order
// panics; FindIntersections may be called at any time and restarts
// the cycle.
package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
)

// epsilon is the parallelism cutoff. Rays whose direction makes a
// smaller |dot| with the surface normal count as parallel and miss.
const epsilon = 1e-10

// Manager intersects ray bundles with one surface shape. The frame
// argument positions the shape in global coordinates, so one manager
// can serve several surfaces.
type Manager interface {
	// FindIntersections starts a work cycle on bundle and returns the
	// parametric distance along each ray to its hit point, +Inf where
	// the ray misses. The returned slice is the manager's working
	// copy and stays valid until the next cycle.
	FindIntersections(frame *mat.Dense, bundle *ray.Bundle) []float64

	// SelectRays narrows the cycle to the rays at the given indices
	// of the working bundle. Only those rays are represented in the
	// query results below.
	SelectRays(idxs []int)

	// Normals returns the surface normal at each selected ray's hit
	// point, facing against the ray.
	Normals() []r3.Vec

	// IntersectionPointsGlobal returns each selected ray's hit point
	// in global coordinates.
	IntersectionPointsGlobal() []r3.Vec

	// Done discards the cycle's working data. Calling it on an idle
	// manager is harmless.
	Done()
}

// Mesher is implemented by bounded managers that can represent their
// surface as a local-coordinates mesh for plotting and export.
type Mesher interface {
	// Mesh returns grids of x, y and z coordinates. resolution is in
	// points per unit length, so the grid has O(A*resolution^2)
	// points for surface area A.
	Mesh(resolution float64) (x, y, z [][]float64)
}

type stage int

const (
	idle stage = iota
	intersected
	selected
)

func mustStage(got, want stage, op string) {
	if got == want {
		return
	}
	switch {
	case got == idle:
		panic(fmt.Sprintf("geometry: %s before FindIntersections", op))
	case got == intersected && want == selected:
		panic(fmt.Sprintf("geometry: %s before SelectRays", op))
	default:
		panic(fmt.Sprintf("geometry: %s called twice in one cycle", op))
	}
}
