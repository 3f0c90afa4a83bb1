package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alexlib/tracer/pkg/ray"
)

// RoundPlate is a circular plate centered on the local origin, lying
// in the local xy plane.
type RoundPlate struct {
	finiteFlat
	radius float64
}

// NewRoundPlate returns a manager for a plate of the given radius,
// which must be positive.
func NewRoundPlate(radius float64) (*RoundPlate, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("geometry: plate radius must be positive, got %v", radius)
	}
	return &RoundPlate{radius: radius}, nil
}

// FindIntersections extends the plane intersection by marking rays
// whose hit point falls outside the centered circle as misses.
func (g *RoundPlate) FindIntersections(frame *mat.Dense, bundle *ray.Bundle) []float64 {
	params := g.finiteFlat.findIntersections(frame, bundle)
	r2 := g.radius * g.radius
	for i, p := range g.local {
		if p.X*p.X+p.Y*p.Y > r2 {
			params[i] = math.Inf(1)
		}
	}
	g.local = nil
	return params
}

// Mesh returns a polar grid over the plate in local coordinates: the
// points are equally spaced in radius and angle, not in x and y, so
// the mesh edge follows the circle.
func (g *RoundPlate) Mesh(resolution float64) (x, y, z [][]float64) {
	rEnd := g.radius + 0.01/resolution
	rs := arange(0, rEnd, 1/resolution)
	angs := arange(0, 2*math.Pi, 1/(g.radius*resolution))

	nr, na := len(rs), len(angs)
	x = grid(nr, na)
	y = grid(nr, na)
	z = grid(nr, na)
	for i, r := range rs {
		for j, a := range angs {
			x[i][j] = r * math.Cos(a)
			y[i][j] = r * math.Sin(a)
		}
	}
	return x, y, z
}
