// Package fluxmap bins receiver hits into a flux distribution over a
// rectangular aperture and renders it as a heat map.
package fluxmap

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/alexlib/tracer/pkg/spatial"
)

// Map accumulates hit energy over a width-by-height aperture centered
// on a surface's local origin, split into nx-by-ny bins. Flux per bin
// is the accumulated energy divided by the bin area.
type Map struct {
	width, height float64
	nx, ny        int
	binArea       float64
	energy        [][]float64 // [col][row] accumulated W
	power         float64
	misses        int
}

// New returns an empty flux map over a width-by-height aperture with
// nx-by-ny bins.
func New(width, height float64, nx, ny int) (*Map, error) {
	if !(width > 0) || !(height > 0) {
		return nil, fmt.Errorf("fluxmap: aperture must be positive, got %v by %v", width, height)
	}
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("fluxmap: need at least one bin per axis, got %d by %d", nx, ny)
	}
	m := &Map{
		width:   width,
		height:  height,
		nx:      nx,
		ny:      ny,
		binArea: (width / float64(nx)) * (height / float64(ny)),
	}
	m.energy = make([][]float64, nx)
	for i := range m.energy {
		m.energy[i] = make([]float64, ny)
	}
	return m, nil
}

// Record accumulates hits given in global coordinates. frame is the
// receiving surface's global frame; each hit is binned by its local x
// and y. Hits outside the aperture only count toward Misses. points
// and energy must have the same length.
func (m *Map) Record(frame *mat.Dense, points []r3.Vec, energy []float64) {
	if len(points) != len(energy) {
		panic(fmt.Sprintf("fluxmap: %d points with %d energy values", len(points), len(energy)))
	}
	inv := spatial.InvertFrame(frame)
	for i, p := range points {
		lp := spatial.ApplyToPoint(inv, p)
		fx := (lp.X + m.width/2) / m.width
		fy := (lp.Y + m.height/2) / m.height
		if !(fx >= 0 && fx <= 1 && fy >= 0 && fy <= 1) {
			m.misses++
			continue
		}
		cx := int(fx * float64(m.nx))
		if cx == m.nx { // hits on the upper edge belong to the last bin
			cx--
		}
		cy := int(fy * float64(m.ny))
		if cy == m.ny {
			cy--
		}
		m.energy[cx][cy] += energy[i]
		m.power += energy[i]
	}
}

// Dims returns the bin counts along x and y.
func (m *Map) Dims() (nx, ny int) { return m.nx, m.ny }

// Flux returns the flux in bin (cx, cy) in W/m^2.
func (m *Map) Flux(cx, cy int) float64 {
	return m.energy[cx][cy] / m.binArea
}

// Peak returns the highest bin flux in W/m^2.
func (m *Map) Peak() float64 {
	peak := 0.0
	for _, col := range m.energy {
		for _, e := range col {
			peak = math.Max(peak, e/m.binArea)
		}
	}
	return peak
}

// Power returns the total energy recorded inside the aperture, in W.
func (m *Map) Power() float64 { return m.power }

// Misses returns how many recorded hits fell outside the aperture.
func (m *Map) Misses() int { return m.misses }

// grid adapts a Map to the plotter's GridXYZ, reporting bin centers
// in aperture coordinates and flux as z.
type grid struct {
	m *Map
}

func (g grid) Dims() (c, r int) { return g.m.nx, g.m.ny }

func (g grid) Z(c, r int) float64 { return g.m.Flux(c, r) }

func (g grid) X(c int) float64 {
	return -g.m.width/2 + (float64(c)+0.5)*g.m.width/float64(g.m.nx)
}

func (g grid) Y(r int) float64 {
	return -g.m.height/2 + (float64(r)+0.5)*g.m.height/float64(g.m.ny)
}

func (g grid) Min() float64 { return 0 }

func (g grid) Max() float64 {
	// An all-dark map still needs a nonzero palette range.
	if peak := g.m.Peak(); peak > 0 {
		return peak
	}
	return 1
}

// Plot renders the map as a heat map of flux in W/m^2.
func (m *Map) Plot(title string) *plot.Plot {
	plt := plot.New()
	plt.Title.Text = title
	plt.X.Label.Text = "x (m)"
	plt.Y.Label.Text = "y (m)"
	plt.BackgroundColor = color.Black
	for _, elt := range []*color.Color{
		&plt.Title.TextStyle.Color,
		&plt.X.Color,
		&plt.X.Tick.Color,
		&plt.X.Tick.Label.Color,
		&plt.X.Label.TextStyle.Color,
		&plt.Y.Color,
		&plt.Y.Tick.Color,
		&plt.Y.Tick.Label.Color,
		&plt.Y.Label.TextStyle.Color,
	} {
		*elt = color.White
	}

	pal := palette.Heat(256, 1)
	hm := plotter.NewHeatMap(grid{m}, pal)
	hm.Underflow = color.Black
	hm.Rasterized = true
	plt.Add(hm)
	return plt
}

// SavePNG renders the heat map to a PNG file.
func (m *Map) SavePNG(title, path string) error {
	return m.Plot(title).Save(20*vg.Centimeter, 15*vg.Centimeter, path)
}
