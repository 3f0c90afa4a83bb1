package optics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/alexlib/tracer/pkg/ray"
)

func TestNewRefractiveValidation(t *testing.T) {
	bad := [][2]float64{{0, 1.5}, {1, -1}, {math.NaN(), 1.5}}
	for _, nn := range bad {
		if _, err := NewRefractive(nn[0], nn[1]); err == nil {
			t.Errorf("NewRefractive(%v, %v) accepted bad indices", nn[0], nn[1])
		}
	}
	if _, err := NewRefractive(1, 1.5); err != nil {
		t.Errorf("NewRefractive(1, 1.5) = %v", err)
	}
}

func TestRefractiveNormalIncidence(t *testing.T) {
	// Air to glass head on: R = ((1-1.5)/(1+1.5))^2 = 0.04.
	b := ray.New([]r3.Vec{{Z: 1}}, []r3.Vec{{Z: -1}})
	b.SetEnergy([]float64{100})
	b.SetRefIndex([]float64{1})

	resp, err := NewRefractive(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	out := resp.Respond(downwardHit(b, []int{0}))

	if out.NumRays() != 2 {
		t.Fatalf("NumRays() = %d, want reflected + refracted", out.NumRays())
	}

	// Reflected first: straight back up, 4% of the energy, still in air.
	if d := out.Directions()[0]; !vecNear(d, r3.Vec{Z: 1}) {
		t.Errorf("reflected direction = %v, want (0,0,1)", d)
	}
	if e := out.Energy()[0]; math.Abs(e-4) > tol {
		t.Errorf("reflected energy = %v, want 4", e)
	}
	if n := out.RefIndex()[0]; n != 1 {
		t.Errorf("reflected ref_index = %v, want 1", n)
	}

	// Refracted: straight through, 96% of the energy, now in glass.
	if d := out.Directions()[1]; !vecNear(d, r3.Vec{Z: -1}) {
		t.Errorf("refracted direction = %v, want (0,0,-1)", d)
	}
	if e := out.Energy()[1]; math.Abs(e-96) > tol {
		t.Errorf("refracted energy = %v, want 96", e)
	}
	if n := out.RefIndex()[1]; n != 1.5 {
		t.Errorf("refracted ref_index = %v, want 1.5", n)
	}

	if p := out.Parents(); p[0] != 0 || p[1] != 0 {
		t.Errorf("parents = %v, want [0 0]", p)
	}
}

func TestRefractiveSnellBend(t *testing.T) {
	// Air to glass at 45 degrees: sin(t) = sin(45)/1.5.
	b := ray.New([]r3.Vec{{X: -1, Z: 1}}, []r3.Vec{r3.Unit(r3.Vec{X: 1, Z: -1})})
	b.SetEnergy([]float64{1})
	b.SetRefIndex([]float64{1})

	resp, err := NewRefractive(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	out := resp.Respond(downwardHit(b, []int{0}))

	refr := out.Directions()[1]
	sinT := math.Sin(math.Pi/4) / 1.5
	want := r3.Vec{X: sinT, Z: -math.Sqrt(1 - sinT*sinT)}
	if !vecNear(refr, want) {
		t.Errorf("refracted direction = %v, want %v", refr, want)
	}
	if math.Abs(r3.Norm(refr)-1) > tol {
		t.Errorf("refracted direction norm = %v, want 1", r3.Norm(refr))
	}

	// Unpolarized Fresnel conserves energy across the split.
	total := out.Energy()[0] + out.Energy()[1]
	if math.Abs(total-1) > tol {
		t.Errorf("total outgoing energy = %v, want 1", total)
	}
}

func TestRefractiveTotalInternalReflection(t *testing.T) {
	// Glass to air at 45 degrees is past the critical angle
	// (about 41.8 degrees), so no ray refracts.
	b := ray.New([]r3.Vec{{X: -1, Z: 1}}, []r3.Vec{r3.Unit(r3.Vec{X: 1, Z: -1})})
	b.SetEnergy([]float64{10})
	b.SetRefIndex([]float64{1.5})

	resp, err := NewRefractive(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	out := resp.Respond(downwardHit(b, []int{0}))

	if out.NumRays() != 1 {
		t.Fatalf("NumRays() = %d, want only the reflected ray", out.NumRays())
	}
	if e := out.Energy()[0]; math.Abs(e-10) > tol {
		t.Errorf("reflected energy = %v, want all of it (10)", e)
	}
	if d := out.Directions()[0]; !vecNear(d, r3.Unit(r3.Vec{X: 1, Z: 1})) {
		t.Errorf("reflected direction = %v, want mirrored", d)
	}
	if n := out.RefIndex()[0]; n != 1.5 {
		t.Errorf("reflected ref_index = %v, want to stay in glass", n)
	}
}

func TestRefractiveMixedBundle(t *testing.T) {
	// One ray in air entering glass, one in glass leaving at a
	// shallow angle (below critical, about 30 degrees).
	sin30 := 0.5
	b := ray.New(
		[]r3.Vec{{Z: 1}, {X: 1, Z: 1}},
		[]r3.Vec{{Z: -1}, r3.Unit(r3.Vec{X: sin30, Z: -math.Sqrt(1 - sin30*sin30)})},
	)
	b.SetEnergy([]float64{1, 1})
	b.SetRefIndex([]float64{1, 1.5})

	resp, err := NewRefractive(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	out := resp.Respond(downwardHit(b, []int{0, 1}))

	// Two reflected plus two refracted rays.
	if out.NumRays() != 4 {
		t.Fatalf("NumRays() = %d, want 4", out.NumRays())
	}
	// The glass ray crosses into air with a steeper angle:
	// sin(out) = 1.5 * sin(30) = 0.75.
	refr := out.Directions()[3]
	if math.Abs(refr.X-0.75) > tol {
		t.Errorf("exit sine = %v, want 0.75", refr.X)
	}
	if n := out.RefIndex()[3]; n != 1 {
		t.Errorf("exit ref_index = %v, want 1 (air)", n)
	}

	var total float64
	for _, e := range out.Energy() {
		total += e
	}
	if math.Abs(total-2) > tol {
		t.Errorf("total outgoing energy = %v, want 2", total)
	}
}

func TestRefractiveWithoutRefIndexAssumesN1(t *testing.T) {
	b := ray.New([]r3.Vec{{Z: 1}}, []r3.Vec{{Z: -1}})
	b.SetEnergy([]float64{1})

	resp, err := NewRefractive(1, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	out := resp.Respond(downwardHit(b, []int{0}))

	if out.NumRays() != 2 {
		t.Fatalf("NumRays() = %d, want 2", out.NumRays())
	}
	if n := out.RefIndex()[1]; n != 1.5 {
		t.Errorf("refracted ref_index = %v, want 1.5", n)
	}
}
