package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"bonedriver/internal/blendshape"
)

// Propagator runs the two-pass constraint update on a weight vector.
type Propagator struct {
	add     []UpdateConstraint
	limit   []UpdateConstraint
	targets []int
	policy  ProportionalPolicy
}

// NewPropagator prepares list for repeated application.
func NewPropagator(list []UpdateConstraint, policy ProportionalPolicy) *Propagator {
	add, limit := Split(list)
	return &Propagator{
		add:     add,
		limit:   limit,
		targets: Targets(add),
		policy:  policy,
	}
}

// Len returns the number of Add and Limit constraints.
func (p *Propagator) Len() (add, limit int) {
	return len(p.add), len(p.limit)
}

// Apply resets every Add target to full weight, runs the Add constraints in
// order and then clamps the Limit targets. Constraints run sequentially: a
// target written early is seen by later constraints reading it.
func (p *Propagator) Apply(w blendshape.Weights) {
	for _, i := range p.targets {
		w.SetWeight(i, 100)
	}

	for _, u := range p.add {
		if u.CurveMode == CurveNone {
			continue
		}
		s := w.Weight(u.SourceIndex) / 100
		t := w.Weight(u.TargetIndex)
		w.SetWeight(u.TargetIndex, Curve(u.CurveMode, t, s, p.policy))
	}

	for _, u := range p.limit {
		s := math.Abs(w.Weight(u.SourceIndex))
		t := w.Weight(u.TargetIndex)
		w.SetWeight(u.TargetIndex, mgl64.Clamp(t, -s, s))
	}
}

// Curve returns the new target weight for target t and normalized source s.
func Curve(mode CurveMode, t, s float64, policy ProportionalPolicy) float64 {
	switch mode {
	case CurveDirect:
		return t * s
	case CurveProportional:
		if policy == ProportionalScale {
			return t * s
		}
		return 0
	case CurveSawtooth:
		return t * Triangle(s)
	}
	return t
}

// Triangle peaks at 1 for x = 0.5 and falls to 0 at x = 0 and x = 1.
func Triangle(x float64) float64 {
	return mgl64.Clamp(1-2*math.Abs(x-0.5), 0, 1)
}
