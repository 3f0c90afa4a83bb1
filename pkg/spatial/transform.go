// Package spatial builds and manipulates the homogeneous transforms
// that position surfaces in the global frame.
//
// A frame is a 4x4 matrix of the form
//
//	[ R t ]
//	[ 0 1 ]
//
// where R is a 3x3 rotation and t a translation. Points transform as
// R*p + t, directions as R*d.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// AxisRotation returns the 3x3 matrix rotating by angle radians about
// axis, per the Rodrigues formula. axis need not be unit length.
func AxisRotation(axis r3.Vec, angle float64) *mat.Dense {
	u := r3.Unit(axis)
	s, c := math.Sin(angle), math.Cos(angle)
	v := 1 - c
	return mat.NewDense(3, 3, []float64{
		u.X*u.X*v + c, u.X*u.Y*v - u.Z*s, u.X*u.Z*v + u.Y*s,
		u.Y*u.X*v + u.Z*s, u.Y*u.Y*v + c, u.Y*u.Z*v - u.X*s,
		u.Z*u.X*v - u.Y*s, u.Z*u.Y*v + u.X*s, u.Z*u.Z*v + c,
	})
}

// Transform returns the frame that rotates by angle radians about axis
// and then translates by translation.
func Transform(axis r3.Vec, angle float64, translation r3.Vec) *mat.Dense {
	rot := AxisRotation(axis, angle)
	f := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f.Set(i, j, rot.At(i, j))
		}
	}
	f.Set(0, 3, translation.X)
	f.Set(1, 3, translation.Y)
	f.Set(2, 3, translation.Z)
	f.Set(3, 3, 1)
	return f
}

// Identity returns a new identity frame.
func Identity() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// RotX returns the frame rotating by angle radians about the x axis.
func RotX(angle float64) *mat.Dense {
	s, c := math.Sin(angle), math.Cos(angle)
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})
}

// RotY returns the frame rotating by angle radians about the y axis.
func RotY(angle float64) *mat.Dense {
	s, c := math.Sin(angle), math.Cos(angle)
	return mat.NewDense(4, 4, []float64{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	})
}

// RotZ returns the frame rotating by angle radians about the z axis.
func RotZ(angle float64) *mat.Dense {
	s, c := math.Sin(angle), math.Cos(angle)
	return mat.NewDense(4, 4, []float64{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// Translation returns the frame translating by t without rotation.
func Translation(t r3.Vec) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, t.X,
		0, 1, 0, t.Y,
		0, 0, 1, t.Z,
		0, 0, 0, 1,
	})
}

// Compose multiplies frames left to right, so Compose(a, b) applies b
// first and a second. With no arguments it returns the identity.
func Compose(frames ...*mat.Dense) *mat.Dense {
	out := Identity()
	for _, f := range frames {
		next := mat.NewDense(4, 4, nil)
		next.Mul(out, f)
		out = next
	}
	return out
}

// RotationTo returns a frame, with no translation, whose local +z axis
// points along dir in global coordinates.
func RotationTo(dir r3.Vec) *mat.Dense {
	u := r3.Unit(dir)
	switch {
	case u.Z >= 1-1e-12:
		return Identity()
	case u.Z <= -1+1e-12:
		return RotX(math.Pi)
	}
	axis := r3.Cross(r3.Vec{Z: 1}, u)
	return Transform(axis, math.Acos(u.Z), r3.Vec{})
}

// FrameNormal returns the global direction of the frame's local +z
// axis, the third column of the rotation part.
func FrameNormal(frame *mat.Dense) r3.Vec {
	return r3.Vec{X: frame.At(0, 2), Y: frame.At(1, 2), Z: frame.At(2, 2)}
}

// FrameOrigin returns the frame's translation, the position of the
// local origin in global coordinates.
func FrameOrigin(frame *mat.Dense) r3.Vec {
	return r3.Vec{X: frame.At(0, 3), Y: frame.At(1, 3), Z: frame.At(2, 3)}
}

// InvertFrame returns the inverse of frame. It panics if the frame is
// singular, which cannot happen for a proper rigid transform.
func InvertFrame(frame *mat.Dense) *mat.Dense {
	inv := mat.NewDense(4, 4, nil)
	if err := inv.Inverse(frame); err != nil {
		panic("spatial: frame is not invertible: " + err.Error())
	}
	return inv
}

// ApplyToPoint transforms a point through frame, including the
// translation.
func ApplyToPoint(frame *mat.Dense, p r3.Vec) r3.Vec {
	return r3.Vec{
		X: frame.At(0, 0)*p.X + frame.At(0, 1)*p.Y + frame.At(0, 2)*p.Z + frame.At(0, 3),
		Y: frame.At(1, 0)*p.X + frame.At(1, 1)*p.Y + frame.At(1, 2)*p.Z + frame.At(1, 3),
		Z: frame.At(2, 0)*p.X + frame.At(2, 1)*p.Y + frame.At(2, 2)*p.Z + frame.At(2, 3),
	}
}

// ApplyToDirection transforms a direction through frame, ignoring the
// translation.
func ApplyToDirection(frame *mat.Dense, d r3.Vec) r3.Vec {
	return r3.Vec{
		X: frame.At(0, 0)*d.X + frame.At(0, 1)*d.Y + frame.At(0, 2)*d.Z,
		Y: frame.At(1, 0)*d.X + frame.At(1, 1)*d.Y + frame.At(1, 2)*d.Z,
		Z: frame.At(2, 0)*d.X + frame.At(2, 1)*d.Y + frame.At(2, 2)*d.Z,
	}
}
