package pose_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bonedriver/internal/blendshape"
	"bonedriver/internal/glossary"
	"bonedriver/internal/pose"
	"bonedriver/internal/rig"
)

func assertQuat(t *testing.T, want, got mgl64.Quat, delta float64) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, delta, "w of %v", got)
	for i := range want.V {
		assert.InDelta(t, want.V[i], got.V[i], delta, "v[%d] of %v", i, got)
	}
}

func assertVec3(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func jawBone() glossary.Bone {
	return glossary.Bone{
		Name:        "Jaw",
		RefPosition: mgl64.Vec3{0, 0.02, 0.01},
		RefRotation: mgl64.QuatRotate(0.1, mgl64.Vec3{1, 0, 0}),
		Expressions: []glossary.Expression{
			{Name: "Jaw_Open", BlendShapeIndex: 0, Translate: mgl64.Vec3{0, -0.02, 0}, Rotation: mgl64.QuatIdent()},
			{Name: "Jaw_Left", BlendShapeIndex: 1, Translate: mgl64.Vec3{0.01, 0, 0}, Rotation: mgl64.QuatRotate(math.Pi/6, mgl64.Vec3{0, 1, 0})},
		},
	}
}

func TestEvaluateZeroWeightsIsReferencePose(t *testing.T) {
	b := jawBone()
	pos, rot := pose.Evaluate(b, blendshape.Slice{0, 0})
	assert.Equal(t, b.RefPosition, pos)
	assert.Equal(t, b.RefRotation, rot)
}

func TestEvaluateJawScenario(t *testing.T) {
	b := glossary.Bone{
		Name:        "Jaw",
		RefPosition: mgl64.Vec3{0.1, 0.2, 0.3},
		RefRotation: mgl64.QuatIdent(),
		Expressions: []glossary.Expression{
			{BlendShapeIndex: 0, Translate: mgl64.Vec3{0, -0.02, 0}, Rotation: mgl64.QuatIdent()},
		},
	}
	pos, rot := pose.Evaluate(b, blendshape.Slice{50})
	assert.InDelta(t, 0.1, pos[0], 1e-12)
	assert.InDelta(t, 0.19, pos[1], 1e-12)
	assert.InDelta(t, 0.3, pos[2], 1e-12)
	assertQuat(t, mgl64.QuatIdent(), rot, 1e-12)
}

func TestEvaluateAccumulatesRotation(t *testing.T) {
	b := jawBone()
	pos, rot := pose.Evaluate(b, blendshape.Slice{0, 50})

	assertVec3(t, mgl64.Vec3{0.005, 0.02, 0.01}, pos, 1e-12)
	want := b.RefRotation.Mul(mgl64.QuatRotate(math.Pi/12, mgl64.Vec3{0, 1, 0}))
	assertQuat(t, want, rot, 1e-9)
}

func TestEvaluateNegativeAndOvershootWeights(t *testing.T) {
	b := jawBone()
	pos, _ := pose.Evaluate(b, blendshape.Slice{-100, 0})
	assert.InDelta(t, 0.04, pos[1], 1e-12)

	pos, _ = pose.Evaluate(b, blendshape.Slice{150, 0})
	assert.InDelta(t, -0.01, pos[1], 1e-12)
}

func TestBindSkipsUnresolvedBones(t *testing.T) {
	ch, err := rig.Parse([]byte(`{"bones":[{"name":"Jaw"}],"meshes":[{"name":"CC_Base_Body","shapes":["a","b"]}]}`))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	g := &glossary.Glossary{Bones: []glossary.Bone{
		{Name: "Ghost", RefRotation: mgl64.QuatIdent()},
		jawBone(),
	}}
	s := pose.Bind(g, ch.Skeleton, 2, zap.New(core))

	assert.Equal(t, []string{"Jaw"}, s.Driven())
	assert.Equal(t, []string{"Ghost"}, s.Unresolved())
	require.Equal(t, 1, logs.FilterMessage("bone not found in hierarchy").Len())

	s.Apply(blendshape.Slice{100, 0})
	jaw, _ := ch.Skeleton.Joint("Jaw")
	assert.True(t, jaw.Posed())
	assert.InDelta(t, 0.0, jaw.LocalPosition[1], 1e-12)
}

func TestBindDropsOutOfRangeExpressions(t *testing.T) {
	ch, err := rig.Parse([]byte(`{"bones":[{"name":"Jaw"}]}`))
	require.NoError(t, err)

	g := &glossary.Glossary{Bones: []glossary.Bone{jawBone()}}
	s := pose.Bind(g, ch.Skeleton, 1, nil)
	assert.Equal(t, 1, s.Dropped())

	// slot 1 no longer exists, so a one-slot weight vector is safe
	s.Apply(blendshape.Slice{50})
	jaw, _ := ch.Skeleton.Joint("Jaw")
	assert.InDelta(t, 0.01, jaw.LocalPosition[1], 1e-12)
}
