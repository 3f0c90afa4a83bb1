package source

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
	"github.com/alexlib/tracer/pkg/spatial"
)

// SunAngularRadius is the half angle subtended by the solar disk as
// seen from Earth, in radians (about 4.65 mrad).
const SunAngularRadius = 4.65e-3

// SolarDiskBundle samples num rays leaving a disk source: vertices
// spread uniformly over a disk of the given radius centered at center
// and perpendicular to direction, directions spread around direction
// in a pillbox cone of half angle angRange radians. flux is the
// source's W/m^2; each ray carries an equal share of flux times the
// disk area. Rays start in a medium of refractive index 1.
func SolarDiskBundle(rng *rand.Rand, num int, center, direction r3.Vec, radius, angRange, flux float64) *ray.Bundle {
	rot := spatial.RotationTo(direction)

	verts := make([]r3.Vec, num)
	dirs := make([]r3.Vec, num)
	for i := 0; i < num; i++ {
		// Uniform area sampling over the disk.
		rd := radius * math.Sqrt(rng.Float64())
		phi := 2 * math.Pi * rng.Float64()
		verts[i] = r3.Add(center, spatial.ApplyToDirection(rot, r3.Vec{
			X: rd * math.Cos(phi),
			Y: rd * math.Sin(phi),
		}))

		// Pillbox sunshape: uniform radiance across the cone.
		theta := math.Asin(math.Sin(angRange) * math.Sqrt(rng.Float64()))
		psi := 2 * math.Pi * rng.Float64()
		sinT := math.Sin(theta)
		dirs[i] = spatial.ApplyToDirection(rot, r3.Vec{
			X: sinT * math.Cos(psi),
			Y: sinT * math.Sin(psi),
			Z: math.Cos(theta),
		})
	}

	b := ray.New(verts, dirs)

	energy := make([]float64, num)
	perRay := flux * math.Pi * radius * radius / float64(num)
	for i := range energy {
		energy[i] = perRay
	}
	b.SetEnergy(energy)

	refIdx := make([]float64, num)
	for i := range refIdx {
		refIdx[i] = 1
	}
	b.SetRefIndex(refIdx)

	return b
}
