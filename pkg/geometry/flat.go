package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
	"github.com/alexlib/tracer/pkg/spatial"
)

// Flat is the geometry of an infinite plane: the xy plane of the
// frame's local coordinates, with the local +z axis as its normal.
type Flat struct {
	stage    stage
	frame    *mat.Dense
	bundle   *ray.Bundle
	params   []float64
	backside []bool // per working ray: hit the -z face
	idxs     []int
	backSel  []int // positions within idxs hitting the -z face
	global   []r3.Vec
}

// NewFlat returns a manager for an unbounded plane.
func NewFlat() *Flat {
	return &Flat{}
}

// FindIntersections starts a work cycle: it registers the frame and
// bundle and returns the parametric hit distance per ray, +Inf for
// rays that are parallel to the plane or would hit behind their
// vertex.
func (g *Flat) FindIntersections(frame *mat.Dense, bundle *ray.Bundle) []float64 {
	g.reset()
	g.frame = frame
	g.bundle = bundle

	normal := spatial.FrameNormal(frame)
	origin := spatial.FrameOrigin(frame)
	verts := bundle.Vertices()
	dirs := bundle.Directions()
	n := bundle.NumRays()

	g.params = make([]float64, n)
	g.backside = make([]bool, n)
	for i := 0; i < n; i++ {
		dt := r3.Dot(dirs[i], normal)
		g.backside[i] = dt > 0
		if math.Abs(dt) <= epsilon {
			g.params[i] = math.Inf(1)
			continue
		}
		t := -r3.Dot(normal, r3.Sub(verts[i], origin)) / dt
		if t < 0 {
			t = math.Inf(1)
		}
		g.params[i] = t
	}

	g.stage = intersected
	return g.params
}

// SelectRays narrows the cycle to the rays at idxs and fixes their
// global hit points.
func (g *Flat) SelectRays(idxs []int) {
	g.selectIndices(idxs)

	verts := g.bundle.Vertices()
	dirs := g.bundle.Directions()
	g.global = make([]r3.Vec, len(g.idxs))
	for k, i := range g.idxs {
		g.global[k] = r3.Add(verts[i], r3.Scale(g.params[i], dirs[i]))
	}
	g.params = nil
}

// selectIndices records the active selection and narrows the backside
// marks to positions within it.
func (g *Flat) selectIndices(idxs []int) {
	mustStage(g.stage, intersected, "SelectRays")
	g.idxs = append([]int(nil), idxs...)
	g.backSel = nil
	for k, i := range g.idxs {
		if g.backside[i] {
			g.backSel = append(g.backSel, k)
		}
	}
	g.stage = selected
}

// Normals returns the plane normal per selected ray, flipped for rays
// that hit the -z face so it always faces the incoming ray.
func (g *Flat) Normals() []r3.Vec {
	mustStage(g.stage, selected, "Normals")
	normal := spatial.FrameNormal(g.frame)
	norms := make([]r3.Vec, len(g.idxs))
	for k := range norms {
		norms[k] = normal
	}
	for _, k := range g.backSel {
		norms[k] = r3.Scale(-1, norms[k])
	}
	return norms
}

// IntersectionPointsGlobal returns the selected rays' hit points in
// global coordinates.
func (g *Flat) IntersectionPointsGlobal() []r3.Vec {
	mustStage(g.stage, selected, "IntersectionPointsGlobal")
	return g.global
}

// Done discards the cycle's working data.
func (g *Flat) Done() {
	g.reset()
}

func (g *Flat) reset() {
	g.stage = idle
	g.frame = nil
	g.bundle = nil
	g.params = nil
	g.backside = nil
	g.idxs = nil
	g.backSel = nil
	g.global = nil
}
