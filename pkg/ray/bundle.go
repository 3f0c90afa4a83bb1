// Package ray implements the columnar ray-bundle container used throughout
// the tracer. A bundle holds a batch of rays as equal-length attribute
// arrays; a ray is identified purely by its index, and every per-ray
// attribute stores that ray's value at the same index.
//
// At minimum the vertices and directions should be set. Most optics
// responses also expect energy, and the refractive ones expect the
// refractive index of the volume each ray is traveling through. The
// parents attribute maps each ray to its parent's index in the previous
// generation's bundle, which is how the engine tracks a ray's progression
// through reflections and refractions.
package ray

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Bundle is a batch of rays stored column-wise. Attributes are present or
// absent per bundle instance; operations that combine bundles only touch
// attributes present on their operands. Directions are expected, but not
// enforced, to be unit vectors.
//
// Bundles may be freely shared for reading. The full-attribute accessors
// return the backing slices without copying, so callers must not mutate an
// attribute that another component is reading; each pipeline stage is
// expected to produce a fresh bundle instead.
type Bundle struct {
	vertices   []r3.Vec
	directions []r3.Vec
	energy     []float64
	parents    []int
	refIndex   []float64

	hasVertices   bool
	hasDirections bool
	hasEnergy     bool
	hasParents    bool
	hasRefIndex   bool
}

// New returns a bundle with vertices and directions set. Further
// attributes can be attached with the setters.
func New(vertices, directions []r3.Vec) *Bundle {
	b := &Bundle{}
	b.SetVertices(vertices)
	b.SetDirections(directions)
	return b
}

// Empty returns a bundle with all five attributes present but holding no
// rays.
func Empty() *Bundle {
	b := &Bundle{}
	b.SetVertices([]r3.Vec{})
	b.SetDirections([]r3.Vec{})
	b.SetEnergy([]float64{})
	b.SetParents([]int{})
	b.SetRefIndex([]float64{})
	return b
}

// NumRays returns the number of rays in the bundle, derived from the
// vertices attribute. It panics if vertices were never set.
func (b *Bundle) NumRays() int {
	if !b.hasVertices {
		panic("ray: bundle has no vertices")
	}
	return len(b.vertices)
}

// Vertices returns the ray origin points. The backing slice is shared,
// not copied.
func (b *Bundle) Vertices() []r3.Vec { return b.vertices }

// VerticesAt returns a copy of the origin points at the selected indices.
func (b *Bundle) VerticesAt(sel []int) []r3.Vec { return gatherVec(b.vertices, sel) }

// SetVertices replaces the origin points of all rays.
func (b *Bundle) SetVertices(v []r3.Vec) {
	b.vertices = v
	b.hasVertices = true
}

// SetVerticesAt overwrites the origin points at the selected indices in
// place.
func (b *Bundle) SetVerticesAt(sel []int, v []r3.Vec) {
	b.mustHave(b.hasVertices, "vertices")
	scatterVec(b.vertices, sel, v)
}

// HasVertices reports whether the vertices attribute is set.
func (b *Bundle) HasVertices() bool { return b.hasVertices }

// Directions returns the unit direction vectors. The backing slice is
// shared, not copied.
func (b *Bundle) Directions() []r3.Vec { return b.directions }

// DirectionsAt returns a copy of the directions at the selected indices.
func (b *Bundle) DirectionsAt(sel []int) []r3.Vec { return gatherVec(b.directions, sel) }

// SetDirections replaces the direction vectors of all rays.
func (b *Bundle) SetDirections(d []r3.Vec) {
	b.directions = d
	b.hasDirections = true
}

// SetDirectionsAt overwrites the directions at the selected indices in
// place.
func (b *Bundle) SetDirectionsAt(sel []int, d []r3.Vec) {
	b.mustHave(b.hasDirections, "directions")
	scatterVec(b.directions, sel, d)
}

// HasDirections reports whether the directions attribute is set.
func (b *Bundle) HasDirections() bool { return b.hasDirections }

// Energy returns the scalar energy carried by each ray (shared slice).
func (b *Bundle) Energy() []float64 { return b.energy }

// EnergyAt returns a copy of the energy values at the selected indices.
func (b *Bundle) EnergyAt(sel []int) []float64 { return gatherFloat(b.energy, sel) }

// SetEnergy replaces the energy of all rays.
func (b *Bundle) SetEnergy(e []float64) {
	b.energy = e
	b.hasEnergy = true
}

// SetEnergyAt overwrites the energy values at the selected indices in
// place.
func (b *Bundle) SetEnergyAt(sel []int, e []float64) {
	b.mustHave(b.hasEnergy, "energy")
	scatterFloat(b.energy, sel, e)
}

// HasEnergy reports whether the energy attribute is set.
func (b *Bundle) HasEnergy() bool { return b.hasEnergy }

// Parents returns, for each ray, the index of its parent ray within the
// bundle this one was created from (shared slice).
func (b *Bundle) Parents() []int { return b.parents }

// ParentsAt returns a copy of the parent indices at the selected indices.
func (b *Bundle) ParentsAt(sel []int) []int { return gatherInt(b.parents, sel) }

// SetParents replaces the parent indices of all rays.
func (b *Bundle) SetParents(p []int) {
	b.parents = p
	b.hasParents = true
}

// SetParentsAt overwrites the parent indices at the selected indices in
// place.
func (b *Bundle) SetParentsAt(sel []int, p []int) {
	b.mustHave(b.hasParents, "parents")
	scatterInt(b.parents, sel, p)
}

// HasParents reports whether the parents attribute is set.
func (b *Bundle) HasParents() bool { return b.hasParents }

// RefIndex returns the refractive index of the medium each ray travels
// through (shared slice).
func (b *Bundle) RefIndex() []float64 { return b.refIndex }

// RefIndexAt returns a copy of the refractive indices at the selected
// indices.
func (b *Bundle) RefIndexAt(sel []int) []float64 { return gatherFloat(b.refIndex, sel) }

// SetRefIndex replaces the refractive index of all rays.
func (b *Bundle) SetRefIndex(n []float64) {
	b.refIndex = n
	b.hasRefIndex = true
}

// SetRefIndexAt overwrites the refractive indices at the selected indices
// in place.
func (b *Bundle) SetRefIndexAt(sel []int, n []float64) {
	b.mustHave(b.hasRefIndex, "ref_index")
	scatterFloat(b.refIndex, sel, n)
}

// HasRefIndex reports whether the refractive-index attribute is set.
func (b *Bundle) HasRefIndex() bool { return b.hasRefIndex }

// Overrides carries replacement attribute arrays for Inherit. A nil field
// means "copy from the source bundle"; a non-nil field is used as-is and
// must match the selector length.
type Overrides struct {
	Vertices   []r3.Vec
	Directions []r3.Vec
	Energy     []float64
	Parents    []int
	RefIndex   []float64
}

// Inherit creates a bundle from the rays selected by sel, copying every
// present attribute at those indices unless an override supplies the
// attribute directly. A nil selector selects all rays. Attributes absent
// from this bundle and not overridden are absent from the result.
//
// Every override must have exactly one value per selected ray; Inherit
// panics on a length mismatch rather than building a bundle whose
// attributes disagree about the number of rays.
func (b *Bundle) Inherit(sel []int, over Overrides) *Bundle {
	out := &Bundle{}

	if over.Vertices != nil {
		checkLen(b, sel, len(over.Vertices), "vertices")
		out.SetVertices(over.Vertices)
	} else if b.hasVertices {
		out.SetVertices(gatherVec(b.vertices, sel))
	}
	if over.Directions != nil {
		checkLen(b, sel, len(over.Directions), "directions")
		out.SetDirections(over.Directions)
	} else if b.hasDirections {
		out.SetDirections(gatherVec(b.directions, sel))
	}
	if over.Energy != nil {
		checkLen(b, sel, len(over.Energy), "energy")
		out.SetEnergy(over.Energy)
	} else if b.hasEnergy {
		out.SetEnergy(gatherFloat(b.energy, sel))
	}
	if over.Parents != nil {
		checkLen(b, sel, len(over.Parents), "parents")
		out.SetParents(over.Parents)
	} else if b.hasParents {
		out.SetParents(gatherInt(b.parents, sel))
	}
	if over.RefIndex != nil {
		checkLen(b, sel, len(over.RefIndex), "ref_index")
		out.SetRefIndex(over.RefIndex)
	} else if b.hasRefIndex {
		out.SetRefIndex(gatherFloat(b.refIndex, sel))
	}

	return out
}

// DeleteRays creates a bundle that copies this one except for the rays
// selected by sel. Equivalent to Inherit with the complementary selector
// and no overrides.
func (b *Bundle) DeleteRays(sel []int) *Bundle {
	return b.Inherit(complement(b.NumRays(), sel), Overrides{})
}

// Merge combines two bundles into a new one, with this bundle's rays
// followed by the other's. Only attributes present on both operands are
// carried; an attribute present on just one side is dropped from the
// result, so callers should keep attribute sets uniform across a pipeline
// stage.
func (b *Bundle) Merge(other *Bundle) *Bundle {
	out := &Bundle{}

	if b.hasDirections && other.hasDirections {
		out.SetDirections(concatVec(b.directions, other.directions))
	}
	if b.hasVertices && other.hasVertices {
		out.SetVertices(concatVec(b.vertices, other.vertices))
	}
	if b.hasEnergy && other.hasEnergy {
		out.SetEnergy(concatFloat(b.energy, other.energy))
	}
	if b.hasParents && other.hasParents {
		out.SetParents(concatInt(b.parents, other.parents))
	}
	if b.hasRefIndex && other.hasRefIndex {
		out.SetRefIndex(concatFloat(b.refIndex, other.refIndex))
	}

	return out
}

// Concatenate merges a list of bundles into one, in order. The result
// carries the attributes present on the first bundle; every later bundle
// must have those attributes too (Concatenate panics otherwise, rather
// than concatenating short arrays). An empty list yields Empty().
func Concatenate(bundles []*Bundle) *Bundle {
	if len(bundles) == 0 {
		return Empty()
	}

	out := &Bundle{}
	first := bundles[0]

	if first.hasDirections {
		vs := make([]r3.Vec, 0, totalRays(bundles))
		for i, bd := range bundles {
			bd.mustHaveAt(bd.hasDirections, "directions", i)
			vs = append(vs, bd.directions...)
		}
		out.SetDirections(vs)
	}
	if first.hasVertices {
		vs := make([]r3.Vec, 0, totalRays(bundles))
		for i, bd := range bundles {
			bd.mustHaveAt(bd.hasVertices, "vertices", i)
			vs = append(vs, bd.vertices...)
		}
		out.SetVertices(vs)
	}
	if first.hasEnergy {
		es := make([]float64, 0, totalRays(bundles))
		for i, bd := range bundles {
			bd.mustHaveAt(bd.hasEnergy, "energy", i)
			es = append(es, bd.energy...)
		}
		out.SetEnergy(es)
	}
	if first.hasParents {
		ps := make([]int, 0, totalRays(bundles))
		for i, bd := range bundles {
			bd.mustHaveAt(bd.hasParents, "parents", i)
			ps = append(ps, bd.parents...)
		}
		out.SetParents(ps)
	}
	if first.hasRefIndex {
		ns := make([]float64, 0, totalRays(bundles))
		for i, bd := range bundles {
			bd.mustHaveAt(bd.hasRefIndex, "ref_index", i)
			ns = append(ns, bd.refIndex...)
		}
		out.SetRefIndex(ns)
	}

	return out
}

func totalRays(bundles []*Bundle) int {
	n := 0
	for _, b := range bundles {
		if b.hasVertices {
			n += len(b.vertices)
		} else if b.hasDirections {
			n += len(b.directions)
		}
	}
	return n
}

func (b *Bundle) mustHave(has bool, attr string) {
	if !has {
		panic("ray: bundle has no " + attr)
	}
}

func (b *Bundle) mustHaveAt(has bool, attr string, i int) {
	if !has {
		panic(fmt.Sprintf("ray: bundle %d has no %s", i, attr))
	}
}

// checkLen validates an override's length against the selector. With a
// nil selector the override stands in for every ray, so it must match the
// bundle's ray count when that count is known.
func checkLen(b *Bundle, sel []int, got int, attr string) {
	want := -1
	if sel != nil {
		want = len(sel)
	} else if b.hasVertices {
		want = len(b.vertices)
	} else if b.hasDirections {
		want = len(b.directions)
	}
	if want >= 0 && got != want {
		panic(fmt.Sprintf("ray: %s override has %d values for %d selected rays", attr, got, want))
	}
}

// complement returns the indices of range(n) not listed in sel, in order.
func complement(n int, sel []int) []int {
	drop := make([]bool, n)
	for _, i := range sel {
		drop[i] = true
	}
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	return keep
}

func gatherVec(src []r3.Vec, sel []int) []r3.Vec {
	if sel == nil {
		out := make([]r3.Vec, len(src))
		copy(out, src)
		return out
	}
	out := make([]r3.Vec, len(sel))
	for i, j := range sel {
		out[i] = src[j]
	}
	return out
}

func gatherFloat(src []float64, sel []int) []float64 {
	if sel == nil {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}
	out := make([]float64, len(sel))
	for i, j := range sel {
		out[i] = src[j]
	}
	return out
}

func gatherInt(src []int, sel []int) []int {
	if sel == nil {
		out := make([]int, len(src))
		copy(out, src)
		return out
	}
	out := make([]int, len(sel))
	for i, j := range sel {
		out[i] = src[j]
	}
	return out
}

func scatterVec(dst []r3.Vec, sel []int, v []r3.Vec) {
	if sel == nil {
		if len(v) != len(dst) {
			panic(fmt.Sprintf("ray: setting %d values across %d rays", len(v), len(dst)))
		}
		copy(dst, v)
		return
	}
	if len(v) != len(sel) {
		panic(fmt.Sprintf("ray: setting %d values at %d selected rays", len(v), len(sel)))
	}
	for i, j := range sel {
		dst[j] = v[i]
	}
}

func scatterFloat(dst []float64, sel []int, v []float64) {
	if sel == nil {
		if len(v) != len(dst) {
			panic(fmt.Sprintf("ray: setting %d values across %d rays", len(v), len(dst)))
		}
		copy(dst, v)
		return
	}
	if len(v) != len(sel) {
		panic(fmt.Sprintf("ray: setting %d values at %d selected rays", len(v), len(sel)))
	}
	for i, j := range sel {
		dst[j] = v[i]
	}
}

func scatterInt(dst []int, sel []int, v []int) {
	if sel == nil {
		if len(v) != len(dst) {
			panic(fmt.Sprintf("ray: setting %d values across %d rays", len(v), len(dst)))
		}
		copy(dst, v)
		return
	}
	if len(v) != len(sel) {
		panic(fmt.Sprintf("ray: setting %d values at %d selected rays", len(v), len(sel)))
	}
	for i, j := range sel {
		dst[j] = v[i]
	}
}

func concatVec(a, b []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func concatFloat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func concatInt(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
