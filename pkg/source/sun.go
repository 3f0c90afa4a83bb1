// Package source builds the ray bundles that enter a trace, and the
// solar position and irradiance models that parameterize them.
package source

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
	"gonum.org/v1/gonum/spatial/r3"
)

// SunPos is the sun's position in horizontal alt-azimuth coordinates.
type SunPos struct {
	T time.Time

	// Altitude is the altitude of the sun in degrees, from -90 to 90,
	// where 0 is the horizon and 90 is directly overhead.
	Altitude float64

	// Azimuth is the azimuth of the sun in degrees, from 0 to 360,
	// where 0 is north and 90 is east.
	Azimuth float64
}

// SunPosition returns the sun position at the given time and location.
// Latitude and longitude are in degrees, north and east positive.
func SunPosition(t time.Time, latitude, longitude float64) SunPos {
	p := suncalc.GetPosition(t, latitude, longitude)
	// suncalc returns angles in radians (even though it takes latitude
	// and longitude in degrees). Also, it uses a non-standard
	// convention for azimuth where -90 is east, 0 is south, 90 is west,
	// and 180 is north.
	const rad2deg = 180 / math.Pi
	return SunPos{t, p.Altitude * rad2deg, p.Azimuth*rad2deg + 180}
}

// TowardSun returns the unit vector pointing from the ground to the
// sun, in global coordinates where x is east, y is north and z is up.
func (p SunPos) TowardSun() r3.Vec {
	const deg2rad = math.Pi / 180
	al := p.Altitude * deg2rad
	az := p.Azimuth * deg2rad
	return r3.Unit(r3.Vec{
		X: math.Sin(az) * math.Cos(al),
		Y: math.Cos(az) * math.Cos(al),
		Z: math.Sin(al),
	})
}

// Direction returns the unit vector sunlight travels along, the
// opposite of TowardSun.
func (p SunPos) Direction() r3.Vec {
	return r3.Scale(-1, p.TowardSun())
}

// DirectNormalIrradiance estimates the direct solar flux on a plane
// perpendicular to the sun, in W/m^2, for the given sun altitude in
// degrees at the given elevation above sea level in meters. It is zero
// when the sun is below the horizon.
func DirectNormalIrradiance(altitude, elevation float64) float64 {
	if altitude < 0 {
		return 0
	}

	// Air mass is a unitless number between 1 if the sun is directly
	// overhead and ~38 at the horizon. The core of the formula is
	// simply 1/cos(zenith); the rest of the terms account for the
	// curvature of the Earth.
	//
	// From Kasten, F. and Young, A. T., "Revised optical air mass
	// tables and approximation formula", Applied Optics, vol. 28, pp.
	// 4735-4738, 1989.
	zenithAngle := 90 - altitude // 0 is overhead
	airMass := 1 / (math.Cos(zenithAngle*(math.Pi/180)) + (0.50572 * math.Pow(96.07995-zenithAngle, -1.6364)))

	// Direct component of sunlight, accounting for elevation. From
	// Meinel, A. B. and Meinel, M. P., Applied Solar Energy. Addison
	// Wesley Publishing Co., 1976.
	h := elevation / 1000 // to kilometers
	a := 0.14
	return 1353 * ((1-a*h)*math.Pow(0.7, math.Pow(airMass, 0.678)) + a*h)
}
