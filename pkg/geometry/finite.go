package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
	"github.com/alexlib/tracer/pkg/spatial"
)

// finiteFlat extends the infinite plane for bounded plates. It fixes
// hit points for all rays already during findIntersections, so that a
// wrapping shape can mark points outside its aperture as misses before
// any selection happens.
type finiteFlat struct {
	Flat
	local []r3.Vec // hit points in frame-local coordinates
}

// findIntersections runs the plane intersection and fixes global and
// local hit points for every working ray. Rays that miss the plane
// get NaN points, which no aperture test can pass. The wrapping shape
// must drop local once it is done trimming.
func (g *finiteFlat) findIntersections(frame *mat.Dense, bundle *ray.Bundle) []float64 {
	params := g.Flat.FindIntersections(frame, bundle)

	verts := bundle.Vertices()
	dirs := bundle.Directions()
	g.global = make([]r3.Vec, len(params))
	for i, t := range params {
		if math.IsInf(t, 1) {
			g.global[i] = r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
			continue
		}
		g.global[i] = r3.Add(verts[i], r3.Scale(t, dirs[i]))
	}

	inv := spatial.InvertFrame(frame)
	g.local = make([]r3.Vec, len(params))
	for i, p := range g.global {
		g.local[i] = spatial.ApplyToPoint(inv, p)
	}

	g.params = nil
	return params
}

// SelectRays narrows the cycle to the rays at idxs. The hit points
// were already fixed in findIntersections, so this just slices them.
func (g *finiteFlat) SelectRays(idxs []int) {
	g.selectIndices(idxs)

	sel := make([]r3.Vec, len(g.idxs))
	for k, i := range g.idxs {
		sel[k] = g.global[i]
	}
	g.global = sel
}

// Done discards the cycle's working data.
func (g *finiteFlat) Done() {
	g.local = nil
	g.Flat.Done()
}
