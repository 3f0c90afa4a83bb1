package source

import (
	"math"
	"testing"
	"time"
)

// assertBetween checks x is in [a, b].
func assertBetween(t *testing.T, msg string, x, a, b float64) {
	t.Helper()
	if a <= x && x <= b {
		return
	}
	t.Errorf("got %s = %v, want in range [%v, %v]", msg, x, a, b)
}

func TestDirectNormalIrradiance(t *testing.T) {
	// These ranges are based on the tables at
	// https://www.ftexploring.com/solar-energy/air-mass-and-insolation2.htm
	assertBetween(t, "DNI at 90°", DirectNormalIrradiance(90, 0), 946, 948)
	assertBetween(t, "DNI at 1°", DirectNormalIrradiance(1, 0), 50.5, 52)
	assertBetween(t, "DNI at 0°", DirectNormalIrradiance(0, 0), 20.3, 20.5)

	if got := DirectNormalIrradiance(-5, 0); got != 0 {
		t.Errorf("DNI below horizon = %v, want 0", got)
	}

	// Thinner air above sea level means more direct flux.
	if lo, hi := DirectNormalIrradiance(90, 0), DirectNormalIrradiance(90, 2000); hi <= lo {
		t.Errorf("DNI at 2000 m = %v, want more than %v at sea level", hi, lo)
	}
}

func TestSunPosDirections(t *testing.T) {
	const tol = 1e-12

	overhead := SunPos{Altitude: 90}
	if d := overhead.TowardSun(); math.Abs(d.Z-1) > tol {
		t.Errorf("overhead TowardSun = %v, want (0,0,1)", d)
	}
	if d := overhead.Direction(); math.Abs(d.Z+1) > tol {
		t.Errorf("overhead Direction = %v, want (0,0,-1)", d)
	}

	east := SunPos{Altitude: 0, Azimuth: 90}
	if d := east.TowardSun(); math.Abs(d.X-1) > tol || math.Abs(d.Y) > tol || math.Abs(d.Z) > tol {
		t.Errorf("east TowardSun = %v, want (1,0,0)", d)
	}

	north := SunPos{Altitude: 0, Azimuth: 0}
	if d := north.TowardSun(); math.Abs(d.Y-1) > tol {
		t.Errorf("north TowardSun = %v, want (0,1,0)", d)
	}
}

func TestSunPosition(t *testing.T) {
	// Sde Boker, Israel. Near the summer solstice the midday sun is
	// high; around local midnight it is well below the horizon.
	const lat, lon = 30.85, 34.78

	noon := SunPosition(time.Date(2023, 6, 21, 10, 0, 0, 0, time.UTC), lat, lon)
	assertBetween(t, "midday altitude", noon.Altitude, 60, 90)
	assertBetween(t, "midday azimuth", noon.Azimuth, 0, 360)

	night := SunPosition(time.Date(2023, 6, 21, 22, 0, 0, 0, time.UTC), lat, lon)
	if night.Altitude >= 0 {
		t.Errorf("night altitude = %v, want below horizon", night.Altitude)
	}
}
