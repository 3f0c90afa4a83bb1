package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
	"github.com/alexlib/tracer/pkg/spatial"
)

func TestNewRectPlateValidation(t *testing.T) {
	bad := []struct {
		name string
		w, h float64
	}{
		{"zero width", 0, 1},
		{"negative width", -2, 1},
		{"zero height", 1, 0},
		{"negative height", 1, -3},
		{"NaN width", math.NaN(), 1},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRectPlate(tt.w, tt.h); err == nil {
				t.Errorf("NewRectPlate(%v, %v) accepted bad dimensions", tt.w, tt.h)
			}
		})
	}
	if _, err := NewRectPlate(2, 4); err != nil {
		t.Errorf("NewRectPlate(2, 4) = %v", err)
	}
}

func TestRectPlateTrims(t *testing.T) {
	// A 2x4 plate: hits count when |x| <= 1 and |y| <= 2.
	tests := []struct {
		name string
		x, y float64
		hit  bool
	}{
		{"center", 0, 0, true},
		{"inside", 0.5, 1.9, true},
		{"outside x", 1.5, 0, false},
		{"outside y", 0, 2.1, false},
		{"on x edge", 1, 0, true},
		{"corner out", 1.01, 2.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewRectPlate(2, 4)
			if err != nil {
				t.Fatal(err)
			}
			params := g.FindIntersections(spatial.Identity(),
				singleRay(r3.Vec{X: tt.x, Y: tt.y, Z: 1}, r3.Vec{Z: -1}))
			gotHit := !math.IsInf(params[0], 1)
			if gotHit != tt.hit {
				t.Errorf("param = %v, want hit=%v", params[0], tt.hit)
			}
			if tt.hit && math.Abs(params[0]-1) > tol {
				t.Errorf("param = %v, want 1", params[0])
			}
		})
	}
}

func TestRectPlateTranslatedFrame(t *testing.T) {
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	frame := spatial.Translation(r3.Vec{X: 10})

	b := ray.New(
		[]r3.Vec{{X: 10.5, Y: 1.9, Z: 1}, {X: 11.5, Z: 1}},
		[]r3.Vec{{Z: -1}, {Z: -1}},
	)
	params := g.FindIntersections(frame, b)
	if math.IsInf(params[0], 1) {
		t.Errorf("ray inside the shifted plate missed")
	}
	if !math.IsInf(params[1], 1) {
		t.Errorf("ray outside the shifted plate hit: param = %v", params[1])
	}
}

func TestRectPlateRotatedFrame(t *testing.T) {
	// A quarter turn about z swaps the plate's long and short axes.
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	frame := spatial.RotZ(math.Pi / 2)

	b := ray.New(
		[]r3.Vec{{X: 1.5, Z: 1}, {Y: 1.5, Z: 1}},
		[]r3.Vec{{Z: -1}, {Z: -1}},
	)
	params := g.FindIntersections(frame, b)
	if math.IsInf(params[0], 1) {
		t.Errorf("(1.5, 0) should hit the rotated plate")
	}
	if !math.IsInf(params[1], 1) {
		t.Errorf("(0, 1.5) should miss the rotated plate: param = %v", params[1])
	}
}

func TestRectPlateSelectAfterTrim(t *testing.T) {
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	b := ray.New(
		[]r3.Vec{{X: 0.5, Z: 1}, {X: 5, Z: 1}, {Y: 1, Z: 2}},
		[]r3.Vec{{Z: -1}, {Z: -1}, {Z: -1}},
	)
	params := g.FindIntersections(spatial.Identity(), b)
	if !math.IsInf(params[1], 1) {
		t.Fatalf("ray 1 should miss, param = %v", params[1])
	}

	g.SelectRays([]int{0, 2})
	pts := g.IntersectionPointsGlobal()
	want := []r3.Vec{{X: 0.5}, {Y: 1}}
	for i, p := range pts {
		if !vecNear(p, want[i]) {
			t.Errorf("point %d = %v, want %v", i, p, want[i])
		}
	}
	for i, n := range g.Normals() {
		if !vecNear(n, r3.Vec{Z: 1}) {
			t.Errorf("normal %d = %v, want (0,0,1)", i, n)
		}
	}
	g.Done()
}

func TestRectPlateBacksideNormal(t *testing.T) {
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	g.FindIntersections(spatial.Identity(), singleRay(r3.Vec{X: 0.5, Z: -1}, r3.Vec{Z: 1}))
	g.SelectRays([]int{0})
	if n := g.Normals()[0]; !vecNear(n, r3.Vec{Z: -1}) {
		t.Errorf("normal = %v, want (0,0,-1)", n)
	}
}

func TestRectPlateMesh(t *testing.T) {
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	x, y, z := g.Mesh(1)

	if len(x) != 2 || len(x[0]) != 4 {
		t.Fatalf("mesh shape = %dx%d, want 2x4", len(x), len(x[0]))
	}
	for j := range x[0] {
		if x[0][j] != -1 || x[1][j] != 1 {
			t.Errorf("column %d x = (%v, %v), want (-1, 1)", j, x[0][j], x[1][j])
		}
	}
	for i := range y {
		if y[i][0] != -2 || math.Abs(y[i][3]-2) > tol {
			t.Errorf("row %d y spans (%v, %v), want (-2, 2)", i, y[i][0], y[i][3])
		}
	}
	for i := range z {
		for j := range z[i] {
			if z[i][j] != 0 {
				t.Errorf("z[%d][%d] = %v, want 0", i, j, z[i][j])
			}
		}
	}
}

func TestRectPlateMeshMinimumPoints(t *testing.T) {
	g, err := NewRectPlate(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	// Coarse resolution still yields the corner points.
	x, y, _ := g.Mesh(0.1)
	if len(x) != 2 || len(x[0]) != 2 {
		t.Fatalf("mesh shape = %dx%d, want 2x2", len(x), len(x[0]))
	}
	if x[0][0] != -1 || x[1][0] != 1 || y[0][0] != -2 || y[0][1] != 2 {
		t.Errorf("mesh corners wrong: x=%v y=%v", x, y)
	}
}
