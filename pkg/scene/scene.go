// Package scene composes surfaces into an optical assembly.
//
// A surface binds one geometry manager to one optical response and
// carries a transform relative to its parent. Assemblies nest: each
// level's transform composes onto its children, so a whole heliostat
// field can be aimed by rotating one assembly.
package scene

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/alexlib/tracer/pkg/geometry"
	"github.com/alexlib/tracer/pkg/optics"
	"github.com/alexlib/tracer/pkg/spatial"
)

// Surface is one optical element: a shape, its response, and its
// placement. Geometry managers hold per-trace working state, so a
// manager instance must not be shared between surfaces; responses may
// be shared freely.
type Surface struct {
	geom      geometry.Manager
	resp      optics.Response
	transform *mat.Dense
	global    *mat.Dense
}

// NewSurface binds a geometry manager and a response under the given
// transform. A nil transform places the surface at the origin, local
// axes aligned with its parent's.
func NewSurface(geom geometry.Manager, resp optics.Response, transform *mat.Dense) (*Surface, error) {
	if geom == nil {
		return nil, errors.New("scene: surface needs a geometry manager")
	}
	if resp == nil {
		return nil, errors.New("scene: surface needs an optical response")
	}
	if transform == nil {
		transform = spatial.Identity()
	}
	return &Surface{geom: geom, resp: resp, transform: transform, global: transform}, nil
}

// Geometry returns the surface's geometry manager.
func (s *Surface) Geometry() geometry.Manager { return s.geom }

// Response returns the surface's optical response.
func (s *Surface) Response() optics.Response { return s.resp }

// Transform returns the surface's own transform, relative to its
// parent assembly.
func (s *Surface) Transform() *mat.Dense { return s.transform }

// SetTransform replaces the surface's own transform. The global frame
// is refreshed on the next assembly traversal.
func (s *Surface) SetTransform(transform *mat.Dense) {
	if transform == nil {
		transform = spatial.Identity()
	}
	s.transform = transform
	s.global = transform
}

// GlobalFrame returns the surface's frame in global coordinates as of
// the last assembly traversal. For a surface used on its own it is
// simply the surface's transform.
func (s *Surface) GlobalFrame() *mat.Dense { return s.global }

// Assembly is a group of surfaces and sub-assemblies sharing a
// transform.
type Assembly struct {
	transform *mat.Dense
	surfaces  []*Surface
	children  []*Assembly
}

// NewAssembly returns an empty assembly under the given transform. A
// nil transform means the assembly sits at its parent's origin.
func NewAssembly(transform *mat.Dense) *Assembly {
	if transform == nil {
		transform = spatial.Identity()
	}
	return &Assembly{transform: transform}
}

// AddSurface adds a surface to this assembly level.
func (a *Assembly) AddSurface(s *Surface) {
	a.surfaces = append(a.surfaces, s)
}

// AddAssembly nests a sub-assembly under this one.
func (a *Assembly) AddAssembly(child *Assembly) {
	a.children = append(a.children, child)
}

// SetTransform replaces the assembly's transform, re-aiming everything
// under it on the next traversal.
func (a *Assembly) SetTransform(transform *mat.Dense) {
	if transform == nil {
		transform = spatial.Identity()
	}
	a.transform = transform
}

// Transform returns the assembly's transform relative to its parent.
func (a *Assembly) Transform() *mat.Dense { return a.transform }

// Surfaces returns every surface in the assembly tree, depth first,
// with global frames freshly composed from the nested transforms.
func (a *Assembly) Surfaces() []*Surface {
	a.compose(spatial.Identity())
	return a.collect(nil)
}

func (a *Assembly) compose(parent *mat.Dense) {
	frame := spatial.Compose(parent, a.transform)
	for _, s := range a.surfaces {
		s.global = spatial.Compose(frame, s.transform)
	}
	for _, c := range a.children {
		c.compose(frame)
	}
}

func (a *Assembly) collect(out []*Surface) []*Surface {
	out = append(out, a.surfaces...)
	for _, c := range a.children {
		out = c.collect(out)
	}
	return out
}
