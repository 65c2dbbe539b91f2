package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuatFromXYZW builds a quaternion from an [x, y, z, w] array, the layout used by
// the glossary and rig documents. The caller checks the length.
func QuatFromXYZW(a []float64) mgl64.Quat {
	return mgl64.Quat{W: a[3], V: mgl64.Vec3{a[0], a[1], a[2]}}
}

// QuatToXYZW is the inverse of QuatFromXYZW.
func QuatToXYZW(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
// Rotation is applied X first, then Y, then Z.
func EulerToQuat(rx, ry, rz float64) mgl64.Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return mgl64.Quat{
		W: cx*cy*cz + sx*sy*sz,
		V: mgl64.Vec3{
			sx*cy*cz - cx*sy*sz,
			cx*sy*cz + sx*cy*sz,
			cx*cy*sz - sx*sy*cz,
		},
	}
}

// ScaleRotation returns the fraction t of rotation q, measured from identity.
// t = 0 gives identity, t = 1 gives q; values outside [0, 1] extrapolate.
func ScaleRotation(q mgl64.Quat, t float64) mgl64.Quat {
	return mgl64.QuatSlerp(mgl64.QuatIdent(), q, t)
}

// NormalizeOrIdent normalizes q, falling back to identity for a zero quaternion.
func NormalizeOrIdent(q mgl64.Quat) mgl64.Quat {
	if q.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
