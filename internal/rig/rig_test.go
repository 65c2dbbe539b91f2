package rig

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headYAML = `
name: interviewer
bones:
  - name: CC_Base_Head
    position: [0, 1.6, 0]
  - name: CC_Base_JawRoot
    parent: CC_Base_Head
    position: [0, -0.05, 0.02]
    euler: [0, 0, 90]
  - name: CC_Base_Teeth02
    parent: CC_Base_JawRoot
    position: [0.01, 0, 0]
meshes:
  - name: CC_Base_Body
    shapes: [Jaw_Open, V_Open, Mouth_Smile_L]
  - name: CC_Base_Tongue
    shapes: [V_Tongue_Out]
  - name: CC_Base_Eye
    shapes: []
  - name: CC_Base_Teeth
    shapes: [Jaw_Open, Mouth_Smile_L]
`

func TestParseCharacter(t *testing.T) {
	c, err := Parse([]byte(headYAML))
	require.NoError(t, err)

	assert.Equal(t, "interviewer", c.Name)
	assert.Equal(t, DefaultBody, c.BodyName)
	require.NotNil(t, c.Body())
	require.NotNil(t, c.Tongue())
	assert.Equal(t, 3, c.Body().BlendShapeCount())

	targets := c.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, "CC_Base_Teeth", targets[0].Name())

	jaw, ok := c.Skeleton.Joint("CC_Base_JawRoot")
	require.True(t, ok)
	assert.Equal(t, 0, jaw.Parent)
	want := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	assertQuat(t, want, jaw.BindRotation, 1e-12)
}

func assertQuat(t *testing.T, want, got mgl64.Quat, delta float64) {
	t.Helper()
	assert.InDelta(t, want.W, got.W, delta, "w of %v", got)
	for i := range want.V {
		assert.InDelta(t, want.V[i], got.V[i], delta, "v[%d] of %v", i, got)
	}
}

func assertVec3(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestWorldPositionsChainParents(t *testing.T) {
	c, err := Parse([]byte(headYAML))
	require.NoError(t, err)

	pos := c.Skeleton.WorldPositions()
	require.Len(t, pos, 3)
	assertVec3(t, mgl64.Vec3{0, 1.6, 0}, pos[0])
	assertVec3(t, mgl64.Vec3{0, 1.55, 0.02}, pos[1])
	// jaw is rotated 90° about Z, so the teeth's +X offset lands on +Y
	assertVec3(t, mgl64.Vec3{0, 1.56, 0.02}, pos[2])
}

func TestResolveAndPose(t *testing.T) {
	c, err := Parse([]byte(headYAML))
	require.NoError(t, err)

	b, ok := c.Skeleton.Resolve("CC_Base_JawRoot")
	require.True(t, ok)
	b.SetLocalPose(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())

	jaw, _ := c.Skeleton.Joint("CC_Base_JawRoot")
	assert.True(t, jaw.Posed())
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, jaw.LocalPosition)

	c.Skeleton.ResetPose()
	assert.False(t, jaw.Posed())
	assert.Equal(t, jaw.BindPosition, jaw.LocalPosition)

	_, ok = c.Skeleton.Resolve("CC_Base_Missing")
	assert.False(t, ok)
}

func TestMesh(t *testing.T) {
	m := NewMesh("m", []string{"a", "b", "a"})
	assert.Equal(t, 0, m.BlendShapeIndex("a"))
	assert.Equal(t, -1, m.BlendShapeIndex("z"))

	assert.True(t, m.SetWeightByName("b", 42))
	assert.False(t, m.SetWeightByName("z", 1))
	assert.Equal(t, 42.0, m.WeightByName("b"))
	assert.Equal(t, 0.0, m.WeightByName("z"))

	snap := m.Snapshot()
	m.Reset()
	assert.Equal(t, []float64{0, 42, 0}, snap)
	assert.Equal(t, []float64{0, 0, 0}, m.Snapshot())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"forward parent", `{"bones":[{"name":"a","parent":"b"},{"name":"b"}]}`, "must be declared before"},
		{"duplicate bone", `{"bones":[{"name":"a"},{"name":"a"}]}`, "duplicate name"},
		{"bad position", `{"bones":[{"name":"a","position":[1,2]}]}`, "position has 2 values"},
		{"bad rotation", `{"bones":[{"name":"a","rotation":[1,2]}]}`, "rotation has 2 values"},
		{"bad euler", `{"bones":[{"name":"a","euler":[1]}]}`, "euler has 1 values"},
		{"duplicate mesh", `{"meshes":[{"name":"m"},{"name":"m"}]}`, "duplicate name"},
		{"unnamed mesh", `{"meshes":[{"shapes":["a"]}]}`, "empty name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(headYAML), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Meshes, 4)

	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "rig: read")
}
