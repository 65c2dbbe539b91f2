// Package pose turns blendshape weights into local bone transforms.
package pose

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"bonedriver/internal/blendshape"
	"bonedriver/internal/glossary"
	"bonedriver/internal/mathutil"
)

// Bone receives the synthesized local pose of one driven bone.
type Bone interface {
	SetLocalPose(position mgl64.Vec3, rotation mgl64.Quat)
}

// Resolver finds a host bone by name. It is consulted once per bone at Bind.
type Resolver interface {
	Resolve(name string) (Bone, bool)
}

type boundBone struct {
	def    glossary.Bone
	target Bone
}

// Synthesizer drives the resolved glossary bones from a weight vector.
type Synthesizer struct {
	bones      []boundBone
	unresolved []string
	dropped    int
}

// Bind resolves every glossary bone against r. Bones that cannot be resolved
// are remembered and skipped on every frame. Expressions pointing past the
// last of shapeCount slots are dropped.
func Bind(g *glossary.Glossary, r Resolver, shapeCount int, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{}
	for _, b := range g.Bones {
		target, ok := r.Resolve(b.Name)
		if !ok || target == nil {
			s.unresolved = append(s.unresolved, b.Name)
			logger.Warn("bone not found in hierarchy", zap.String("bone", b.Name))
			continue
		}

		def := b
		def.Expressions = make([]glossary.Expression, 0, len(b.Expressions))
		for _, e := range b.Expressions {
			if e.BlendShapeIndex >= shapeCount {
				s.dropped++
				logger.Warn("expression slot out of range",
					zap.String("bone", b.Name),
					zap.String("expression", e.Name),
					zap.Int("index", e.BlendShapeIndex),
					zap.Int("shapes", shapeCount))
				continue
			}
			def.Expressions = append(def.Expressions, e)
		}
		s.bones = append(s.bones, boundBone{def: def, target: target})
	}
	return s
}

// Evaluate computes the local pose of b for the weights w.
// Zero weights contribute nothing, so an all-zero frame yields the reference pose.
func Evaluate(b glossary.Bone, w blendshape.Reader) (mgl64.Vec3, mgl64.Quat) {
	pos := b.RefPosition
	rot := b.RefRotation
	for _, e := range b.Expressions {
		weight := w.Weight(e.BlendShapeIndex)
		if weight == 0 {
			continue
		}
		t := weight / 100
		pos = pos.Add(e.Translate.Mul(t))
		rot = rot.Mul(mathutil.ScaleRotation(e.Rotation, t))
	}
	return pos, rot
}

// Apply writes the evaluated pose of every resolved bone.
func (s *Synthesizer) Apply(w blendshape.Reader) {
	for _, b := range s.bones {
		pos, rot := Evaluate(b.def, w)
		b.target.SetLocalPose(pos, rot)
	}
}

// Driven returns the names of the resolved bones in glossary order.
func (s *Synthesizer) Driven() []string {
	names := make([]string, len(s.bones))
	for i, b := range s.bones {
		names[i] = b.def.Name
	}
	return names
}

// Unresolved returns the glossary bones the resolver could not find.
func (s *Synthesizer) Unresolved() []string {
	return append([]string(nil), s.unresolved...)
}

// Dropped returns how many expressions were discarded at Bind.
func (s *Synthesizer) Dropped() int { return s.dropped }
