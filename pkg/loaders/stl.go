// Package loaders converts between scene geometry and mesh files.
// Meshes are kept as indexed triangle lists; binary STL is the
// interchange format.
package loaders

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/geometry"
	"github.com/alexlib/tracer/pkg/scene"
	"github.com/alexlib/tracer/pkg/spatial"
)

// Mesh is an indexed triangle mesh. Verts holds each distinct vertex
// once; Tris holds vertex indices in counterclockwise order.
type Mesh struct {
	Header string

	Verts [][3]float32
	Tris  [][3]int
}

// ReadSTL parses a binary STL stream. The triangle soup is indexed on
// the way in: identical vertices are stored once and shared.
func ReadSTL(r io.Reader) (*Mesh, error) {
	m := new(Mesh)

	var header struct {
		H    [80]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	m.Header = strings.TrimRight(string(header.H[:]), " \x00")

	vertMap := make(map[[3]float32]int)

	var vert [3]float32
	var tri [3]int
	triBuf := make([]byte, 4*3*4+2)
	for i := 0; i < int(header.NTri); i++ {
		if _, err := io.ReadFull(r, triBuf); err != nil {
			return nil, err
		}
		for v := range tri {
			for c := range vert {
				const start = 3 * 4 // skip the normal
				vert[c] = math.Float32frombits(binary.LittleEndian.Uint32(triBuf[start+12*v+4*c:]))
			}
			vertIndex, ok := vertMap[vert]
			if !ok {
				vertIndex = len(m.Verts)
				m.Verts = append(m.Verts, vert)
				vertMap[vert] = vertIndex
			}
			tri[v] = vertIndex
		}
		m.Tris = append(m.Tris, tri)
	}

	return m, nil
}

// WriteSTL writes the mesh as binary STL with facet normals computed
// from the winding order.
func (m *Mesh) WriteSTL(w io.Writer) error {
	var buf bytes.Buffer

	var header [80]byte
	copy(header[:], m.Header)
	buf.Write(header[:])

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(m.Tris)))
	buf.Write(count[:])

	var rec [4*3*4 + 2]byte
	for _, tri := range m.Tris {
		a, b, c := m.Verts[tri[0]], m.Verts[tri[1]], m.Verts[tri[2]]
		n := facetNormal(a, b, c)
		for i, f := range [12]float32{
			n[0], n[1], n[2],
			a[0], a[1], a[2],
			b[0], b[1], b[2],
			c[0], c[1], c[2],
		} {
			binary.LittleEndian.PutUint32(rec[4*i:], math.Float32bits(f))
		}
		rec[4*12] = 0
		rec[4*12+1] = 0
		buf.Write(rec[:])
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func facetNormal(a, b, c [3]float32) [3]float32 {
	u := r3.Vec{X: float64(b[0] - a[0]), Y: float64(b[1] - a[1]), Z: float64(b[2] - a[2])}
	v := r3.Vec{X: float64(c[0] - a[0]), Y: float64(c[1] - a[1]), Z: float64(c[2] - a[2])}
	n := r3.Cross(u, v)
	if r3.Norm(n) == 0 {
		return [3]float32{}
	}
	n = r3.Unit(n)
	return [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
}

// builder accumulates triangles into an indexed mesh, sharing
// identical vertices the way ReadSTL does.
type builder struct {
	mesh    *Mesh
	vertMap map[[3]float32]int
}

func newBuilder(header string) *builder {
	return &builder{
		mesh:    &Mesh{Header: header},
		vertMap: make(map[[3]float32]int),
	}
}

func (b *builder) vertex(v [3]float32) int {
	if i, ok := b.vertMap[v]; ok {
		return i
	}
	i := len(b.mesh.Verts)
	b.mesh.Verts = append(b.mesh.Verts, v)
	b.vertMap[v] = i
	return i
}

// triangle adds one triangle, dropping degenerate ones such as the
// collapsed cells at the center of a polar mesh.
func (b *builder) triangle(p, q, r [3]float32) {
	i, j, k := b.vertex(p), b.vertex(q), b.vertex(r)
	if i == j || j == k || i == k {
		return
	}
	b.mesh.Tris = append(b.mesh.Tris, [3]int{i, j, k})
}

func vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// SurfaceMesh triangulates a surface at the given resolution (points
// per unit length), in global coordinates. It fails for unbounded
// geometry, which has no mesh representation.
func SurfaceMesh(s *scene.Surface, resolution float64) (*Mesh, error) {
	mesher, ok := s.Geometry().(geometry.Mesher)
	if !ok {
		return nil, errors.New("loaders: surface geometry has no mesh representation")
	}

	xs, ys, zs := mesher.Mesh(resolution)
	frame := s.GlobalFrame()

	rows := len(xs)
	pts := make([][][3]float32, rows)
	for i := 0; i < rows; i++ {
		pts[i] = make([][3]float32, len(xs[i]))
		for j := range xs[i] {
			local := r3.Vec{X: xs[i][j], Y: ys[i][j], Z: zs[i][j]}
			pts[i][j] = vec32(spatial.ApplyToPoint(frame, local))
		}
	}

	b := newBuilder("tracer surface")
	for i := 0; i+1 < rows; i++ {
		for j := 0; j+1 < len(pts[i]); j++ {
			p00, p10 := pts[i][j], pts[i+1][j]
			p11, p01 := pts[i+1][j+1], pts[i][j+1]
			b.triangle(p00, p10, p11)
			b.triangle(p00, p11, p01)
		}
	}
	return b.mesh, nil
}

// AssemblyMesh triangulates every bounded surface of the assembly
// into one mesh in global coordinates. Unbounded surfaces are left
// out.
func AssemblyMesh(a *scene.Assembly, resolution float64) *Mesh {
	b := newBuilder("tracer assembly")
	for _, s := range a.Surfaces() {
		m, err := SurfaceMesh(s, resolution)
		if err != nil {
			continue
		}
		for _, tri := range m.Tris {
			b.triangle(m.Verts[tri[0]], m.Verts[tri[1]], m.Verts[tri[2]])
		}
	}
	return b.mesh
}
