// Package optics implements surface responses: the rules that turn
// the rays hitting a surface into outgoing rays.
//
// A response receives the hit geometry for the rays a surface owns in
// the current trace iteration and returns the outgoing bundle those
// rays spawn. Outgoing rays start at the hit points and carry their
// parent's index, so the engine can follow a ray across generations.
package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
)

// HitGeometry describes the rays a surface owns in one trace
// iteration: the full working bundle, the indices of the owned rays,
// and the geometry queries for them. Points and Normals run parallel
// to Selected, with normals facing against the incoming rays.
type HitGeometry struct {
	Bundle   *ray.Bundle
	Selected []int
	Points   []r3.Vec
	Normals  []r3.Vec
}

// Response turns the rays that hit a surface into outgoing rays. An
// implementation may keep state across calls, like the accounting in
// Receiver; stateless responses may be shared between surfaces.
type Response interface {
	Respond(hit HitGeometry) *ray.Bundle
}

// Reflective bounces rays specularly, keeping a fixed fraction of
// their energy.
type Reflective struct {
	absorptivity float64
}

// NewReflective returns a specular response that absorbs the given
// fraction of each ray's energy, which must be in [0, 1].
func NewReflective(absorptivity float64) (*Reflective, error) {
	if !(absorptivity >= 0 && absorptivity <= 1) {
		return nil, fmt.Errorf("optics: absorptivity must be in [0, 1], got %v", absorptivity)
	}
	return &Reflective{absorptivity: absorptivity}, nil
}

// PerfectMirror returns a reflective response that loses no energy.
func PerfectMirror() *Reflective {
	return &Reflective{}
}

// Respond reflects each owned ray about its hit normal. Outgoing rays
// start at the hit points and keep their medium; energy, when
// present, is scaled by one minus the absorptivity.
func (r *Reflective) Respond(hit HitGeometry) *ray.Bundle {
	dirs := hit.Bundle.DirectionsAt(hit.Selected)
	for i := range dirs {
		dirs[i] = reflect(dirs[i], hit.Normals[i])
	}

	over := ray.Overrides{
		Vertices:   hit.Points,
		Directions: dirs,
		Parents:    hit.Selected,
	}
	if hit.Bundle.HasEnergy() {
		energy := hit.Bundle.EnergyAt(hit.Selected)
		for i := range energy {
			energy[i] *= 1 - r.absorptivity
		}
		over.Energy = energy
	}
	return hit.Bundle.Inherit(hit.Selected, over)
}

// Absorber terminates every ray that hits it.
type Absorber struct{}

// Respond returns an empty outgoing bundle.
func (Absorber) Respond(HitGeometry) *ray.Bundle {
	return ray.Empty()
}

// reflect mirrors direction d about a unit normal facing against it.
func reflect(d, n r3.Vec) r3.Vec {
	return r3.Sub(d, r3.Scale(2*r3.Dot(d, n), n))
}

// clampCos keeps a cosine computed from floating-point dots inside
// its mathematical range.
func clampCos(c float64) float64 {
	return math.Min(math.Max(c, -1), 1)
}
