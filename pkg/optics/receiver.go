package optics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
)

// Receiver wraps another response and records every hit it sees: the
// global hit points and the incident energy arriving there. Flux maps
// are built from this record after a trace.
type Receiver struct {
	inner  Response
	points []r3.Vec
	energy []float64
}

// NewReceiver returns a receiver delegating the optical response to
// inner. A nil inner absorbs all incident rays.
func NewReceiver(inner Response) *Receiver {
	if inner == nil {
		inner = Absorber{}
	}
	return &Receiver{inner: inner}
}

// Respond records the incident hits and then delegates to the wrapped
// response. Rays without an energy attribute are recorded with unit
// energy, so hit counting still works.
func (r *Receiver) Respond(hit HitGeometry) *ray.Bundle {
	r.points = append(r.points, hit.Points...)
	if hit.Bundle.HasEnergy() {
		r.energy = append(r.energy, hit.Bundle.EnergyAt(hit.Selected)...)
	} else {
		for range hit.Points {
			r.energy = append(r.energy, 1)
		}
	}
	return r.inner.Respond(hit)
}

// AllHits returns the hit points and incident energy accumulated
// since construction or the last Reset. The slices are the receiver's
// own record; callers must copy them before mutating.
func (r *Receiver) AllHits() ([]r3.Vec, []float64) {
	return r.points, r.energy
}

// Reset clears the accumulated record.
func (r *Receiver) Reset() {
	r.points = nil
	r.energy = nil
}
