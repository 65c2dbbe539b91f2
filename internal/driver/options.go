package driver

import (
	"fmt"

	"bonedriver/internal/constraint"
	"bonedriver/internal/viseme"
)

// Options toggles the per-frame passes and tunes the viseme curve.
type Options struct {
	Bones       bool // glossary bones follow blendshape weights
	Expressions bool // base weights are mirrored to every face part
	Constraint  bool // constraint blendshapes follow their sources
	Amplify     bool // viseme weights go through the power/scale curve

	VisemePower  float64
	VisemeScale  float64
	Proportional constraint.ProportionalPolicy
}

// DefaultOptions enables bones, mirroring and constraints with a neutral curve.
func DefaultOptions() Options {
	return Options{
		Bones:       true,
		Expressions: true,
		Constraint:  true,
		VisemePower: 1,
		VisemeScale: 1,
	}
}

// Validate checks the curve parameters.
func (o Options) Validate() error {
	if !viseme.ValidPower(o.VisemePower) {
		return fmt.Errorf("driver: viseme power %g outside [%g, %g]", o.VisemePower, viseme.MinPower, viseme.MaxPower)
	}
	if !viseme.ValidScale(o.VisemeScale) {
		return fmt.Errorf("driver: viseme scale %g outside [%g, %g]", o.VisemeScale, viseme.MinScale, viseme.MaxScale)
	}
	return nil
}
