package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Vec3FromArr builds a vector from a 3-element array. The caller checks the length.
func Vec3FromArr(a []float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}

// Vec3ToArr is the inverse of Vec3FromArr.
func Vec3ToArr(v mgl64.Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

// Deg3ToRad converts an Euler triple from degrees to radians.
func Deg3ToRad(a []float64) (float64, float64, float64) {
	return mgl64.DegToRad(a[0]), mgl64.DegToRad(a[1]), mgl64.DegToRad(a[2])
}

