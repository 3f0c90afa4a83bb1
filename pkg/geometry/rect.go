package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/alexlib/tracer/pkg/ray"
)

// RectPlate is a rectangular plate centered on the local origin,
// lying in the local xy plane.
type RectPlate struct {
	finiteFlat
	halfW, halfH float64
}

// NewRectPlate returns a manager for a width-by-height plate. Both
// extents must be positive.
func NewRectPlate(width, height float64) (*RectPlate, error) {
	if !(width > 0) {
		return nil, fmt.Errorf("geometry: plate width must be positive, got %v", width)
	}
	if !(height > 0) {
		return nil, fmt.Errorf("geometry: plate height must be positive, got %v", height)
	}
	return &RectPlate{halfW: width / 2, halfH: height / 2}, nil
}

// FindIntersections extends the plane intersection by marking rays
// whose hit point falls outside the centered rectangle as misses.
func (g *RectPlate) FindIntersections(frame *mat.Dense, bundle *ray.Bundle) []float64 {
	params := g.finiteFlat.findIntersections(frame, bundle)
	for i, p := range g.local {
		if math.Abs(p.X) > g.halfW || math.Abs(p.Y) > g.halfH {
			params[i] = math.Inf(1)
		}
	}
	g.local = nil
	return params
}

// Mesh returns a regular grid over the plate in local coordinates,
// with at least the corner points in each direction.
func (g *RectPlate) Mesh(resolution float64) (x, y, z [][]float64) {
	nx := meshPoints(2*g.halfW, resolution)
	ny := meshPoints(2*g.halfH, resolution)
	xs := floats.Span(make([]float64, nx), -g.halfW, g.halfW)
	ys := floats.Span(make([]float64, ny), -g.halfH, g.halfH)

	x = grid(nx, ny)
	y = grid(nx, ny)
	z = grid(nx, ny)
	for i := range x {
		for j := range x[i] {
			x[i][j] = xs[i]
			y[i][j] = ys[j]
		}
	}
	return x, y, z
}

func meshPoints(extent, resolution float64) int {
	n := int(math.Ceil(resolution * extent))
	if n < 2 {
		n = 2 // at least the edges of the range
	}
	return n
}
