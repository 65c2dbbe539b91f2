// Package viseme amplifies lip-sync blendshapes with a power/scale curve.
package viseme

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"bonedriver/internal/blendshape"
)

const (
	// MinPower and MaxPower bound the amplification exponent.
	MinPower = 0.1
	MaxPower = 2.0
	// MinScale and MaxScale bound the amplification multiplier.
	MinScale = 0.0
	MaxScale = 2.0

	// Limit bounds amplified weights on both sides.
	Limit = 150.0
)

// Amplify maps a raw weight x (0-100 scale) through sign(x)*|x/100|^power*scale,
// returning the result on the 0-100 scale clamped to [-Limit, Limit].
func Amplify(x, power, scale float64) float64 {
	if x == 0 {
		return 0
	}
	a := math.Pow(math.Abs(x/100), power) * scale * 100
	if x < 0 {
		a = -a
	}
	return mgl64.Clamp(a, -Limit, Limit)
}

// ValidPower reports whether p is an accepted exponent.
func ValidPower(p float64) bool { return p >= MinPower && p <= MaxPower }

// ValidScale reports whether s is an accepted multiplier.
func ValidScale(s float64) bool { return s >= MinScale && s <= MaxScale }

type source struct {
	mesh    blendshape.Mesh
	indices []int
	last    []float64
}

// Amplifier rewrites the viseme slots of its source meshes in place.
type Amplifier struct {
	sources []source
}

// NewAmplifier classifies the viseme slots of each mesh once. Nil meshes are ignored.
func NewAmplifier(meshes ...blendshape.Mesh) *Amplifier {
	a := &Amplifier{}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		idx := Indices(m)
		a.sources = append(a.sources, source{
			mesh:    m,
			indices: idx,
			last:    make([]float64, len(idx)),
		})
	}
	return a
}

// Slots returns the number of viseme slots across all source meshes.
func (a *Amplifier) Slots() int {
	n := 0
	for _, s := range a.sources {
		n += len(s.indices)
	}
	return n
}

// Apply amplifies every viseme slot. A slot still holding the value this
// amplifier wrote last is left alone so its own output is not amplified twice.
func (a *Amplifier) Apply(power, scale float64) {
	for si := range a.sources {
		s := &a.sources[si]
		for i, idx := range s.indices {
			current := s.mesh.Weight(idx)
			if current == s.last[i] {
				continue
			}
			amplified := Amplify(current, power, scale)
			s.last[i] = amplified
			if amplified != current {
				s.mesh.SetWeight(idx, amplified)
			}
		}
	}
}

// Reset forgets the cached values.
func (a *Amplifier) Reset() {
	for si := range a.sources {
		s := &a.sources[si]
		for i := range s.last {
			s.last[i] = 0
		}
	}
}
