package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
)

// Refractive is the boundary between two homogenous media with
// refractive indices n1 and n2. Each incoming ray splits into a
// reflected and a refracted part weighted by the Fresnel reflectance,
// except under total internal reflection, where all energy reflects.
//
// The side a ray comes from is decided by its ref_index attribute:
// rays traveling in n1 refract into n2 and vice versa. Rays without
// the attribute are assumed to travel in n1.
type Refractive struct {
	n1, n2 float64
}

// NewRefractive returns the response for a boundary between media of
// the given refractive indices, which must be positive.
func NewRefractive(n1, n2 float64) (*Refractive, error) {
	if !(n1 > 0) || !(n2 > 0) {
		return nil, fmt.Errorf("optics: refractive indices must be positive, got %v and %v", n1, n2)
	}
	return &Refractive{n1: n1, n2: n2}, nil
}

// Respond splits each owned ray at the boundary. The outgoing bundle
// holds the reflected rays first, then the refracted rays of those
// that were not totally internally reflected.
func (r *Refractive) Respond(hit HitGeometry) *ray.Bundle {
	sel := hit.Selected
	dirs := hit.Bundle.DirectionsAt(sel)

	current := make([]float64, len(sel))
	if hit.Bundle.HasRefIndex() {
		copy(current, hit.Bundle.RefIndexAt(sel))
	} else {
		for i := range current {
			current[i] = r.n1
		}
	}

	var energy []float64
	if hit.Bundle.HasEnergy() {
		energy = hit.Bundle.EnergyAt(sel)
	}

	reflDirs := make([]r3.Vec, len(sel))
	reflEnergy := make([]float64, len(sel))
	reflIndex := make([]float64, len(sel))

	var refrSel []int // positions within sel that refract
	var refrDirs []r3.Vec
	var refrEnergy, refrIndex []float64

	for i, d := range dirs {
		n := hit.Normals[i]
		from, to := r.n1, r.n2
		if current[i] != r.n1 {
			from, to = r.n2, r.n1
		}

		reflDirs[i] = reflect(d, n)
		reflIndex[i] = from

		cosI := clampCos(-r3.Dot(d, n))
		ratio := from / to
		sinT2 := ratio * ratio * (1 - cosI*cosI)
		if sinT2 > 1 {
			// Total internal reflection: all energy stays with the
			// reflected ray.
			if energy != nil {
				reflEnergy[i] = energy[i]
			}
			continue
		}

		cosT := math.Sqrt(1 - sinT2)
		R := fresnel(from, to, cosI, cosT)
		if energy != nil {
			reflEnergy[i] = energy[i] * R
			refrEnergy = append(refrEnergy, energy[i]*(1-R))
		}

		t := r3.Add(r3.Scale(ratio, d), r3.Scale(ratio*cosI-cosT, n))
		refrSel = append(refrSel, i)
		refrDirs = append(refrDirs, t)
		refrIndex = append(refrIndex, to)
	}

	reflOver := ray.Overrides{
		Vertices:   hit.Points,
		Directions: reflDirs,
		Parents:    sel,
		RefIndex:   reflIndex,
	}
	if energy != nil {
		reflOver.Energy = reflEnergy
	}
	reflected := hit.Bundle.Inherit(sel, reflOver)

	refrParents := make([]int, len(refrSel))
	refrPoints := make([]r3.Vec, len(refrSel))
	for k, i := range refrSel {
		refrParents[k] = sel[i]
		refrPoints[k] = hit.Points[i]
	}
	refrOver := ray.Overrides{
		Vertices:   refrPoints,
		Directions: refrDirs,
		Parents:    refrParents,
		RefIndex:   refrIndex,
	}
	if energy != nil {
		refrOver.Energy = refrEnergy
	}
	refracted := hit.Bundle.Inherit(refrParents, refrOver)

	return reflected.Merge(refracted)
}

// fresnel returns the unpolarized Fresnel reflectance at a boundary
// between indices n1 and n2, for incidence cosine cosI and
// transmission cosine cosT.
func fresnel(n1, n2, cosI, cosT float64) float64 {
	rs := (n1*cosI - n2*cosT) / (n1*cosI + n2*cosT)
	rp := (n1*cosT - n2*cosI) / (n1*cosT + n2*cosI)
	return (rs*rs + rp*rp) / 2
}
