// Package engine runs the trace loop: intersect a generation of rays
// with every surface, let the nearest surface respond to the rays it
// owns, and feed the outgoing rays into the next generation.
package engine

import (
	"math"

	"github.com/alexlib/tracer/pkg/optics"
	"github.com/alexlib/tracer/pkg/ray"
	"github.com/alexlib/tracer/pkg/scene"
)

// selfHitTolerance filters out a ray re-intersecting the surface that
// just spawned it: outgoing rays start exactly on their surface, so a
// hit this close can only be numerical residue.
const selfHitTolerance = 1e-10

// Engine traces ray bundles through an assembly.
type Engine struct {
	asm     *scene.Assembly
	bundles []*ray.Bundle
}

// New returns an engine tracing through the given assembly. The
// assembly may keep changing between traces; each Trace picks up the
// current transforms.
func New(asm *scene.Assembly) *Engine {
	return &Engine{asm: asm}
}

// Trace follows bundle through the scene for at most maxIter surface
// interactions. Each ray is owned by the nearest surface it hits;
// rays that hit nothing leave the scene. After every interaction,
// rays whose energy dropped to minEnergy or below are discarded.
//
// Trace returns the rays still in flight when tracing stopped. The
// full generation history is available from Bundles.
func (e *Engine) Trace(bundle *ray.Bundle, maxIter int, minEnergy float64) *ray.Bundle {
	surfaces := e.asm.Surfaces()
	e.bundles = []*ray.Bundle{bundle}

	for iter := 0; iter < maxIter && bundle.NumRays() > 0; iter++ {
		params := make([][]float64, len(surfaces))
		for k, s := range surfaces {
			params[k] = s.Geometry().FindIntersections(s.GlobalFrame(), bundle)
		}

		// Nearest surface owns the ray; ties go to the surface that
		// was added first.
		owned := make([][]int, len(surfaces))
		for i := 0; i < bundle.NumRays(); i++ {
			owner, nearest := -1, math.Inf(1)
			for k := range surfaces {
				t := params[k][i]
				if t > selfHitTolerance && t < nearest {
					owner, nearest = k, t
				}
			}
			if owner >= 0 {
				owned[owner] = append(owned[owner], i)
			}
		}

		var outgoing []*ray.Bundle
		for k, s := range surfaces {
			if len(owned[k]) == 0 {
				continue
			}
			g := s.Geometry()
			g.SelectRays(owned[k])
			hit := optics.HitGeometry{
				Bundle:   bundle,
				Selected: owned[k],
				Points:   g.IntersectionPointsGlobal(),
				Normals:  g.Normals(),
			}
			outgoing = append(outgoing, s.Response().Respond(hit))
		}
		for _, s := range surfaces {
			s.Geometry().Done()
		}

		next := ray.Concatenate(outgoing)
		if next.HasEnergy() {
			next = cullFaint(next, minEnergy)
		}

		e.bundles = append(e.bundles, next)
		bundle = next
	}
	return bundle
}

// Bundles returns the generation history of the last trace: the
// source bundle first, then one bundle per interaction.
func (e *Engine) Bundles() []*ray.Bundle {
	return e.bundles
}

// cullFaint drops the rays at or below the energy threshold.
func cullFaint(b *ray.Bundle, minEnergy float64) *ray.Bundle {
	var faint []int
	for i, en := range b.Energy() {
		if en <= minEnergy {
			faint = append(faint, i)
		}
	}
	if len(faint) == 0 {
		return b
	}
	return b.DeleteRays(faint)
}
