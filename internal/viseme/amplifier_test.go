package viseme_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonedriver/internal/rig"
	"bonedriver/internal/viseme"
)

func TestAmplifyScenarios(t *testing.T) {
	assert.Equal(t, 50.0, viseme.Amplify(50, 1, 1))
	assert.InDelta(t, math.Sqrt(0.5)*100, viseme.Amplify(50, 0.5, 1), 1e-9)
	assert.InDelta(t, 70.71, viseme.Amplify(50, 0.5, 1), 0.01)
	assert.InDelta(t, 25.0, viseme.Amplify(50, 2, 1), 1e-9)
	assert.Equal(t, 0.0, viseme.Amplify(0, 0.3, 2))
	assert.Equal(t, 0.0, viseme.Amplify(80, 1, 0))
}

func TestAmplifyOddSymmetricAndBounded(t *testing.T) {
	for _, power := range []float64{0.1, 0.5, 1, 1.5, 2} {
		for _, scale := range []float64{0, 0.5, 1, 2} {
			for x := -100.0; x <= 100; x += 2.5 {
				got := viseme.Amplify(x, power, scale)
				assert.Equal(t, -got, viseme.Amplify(-x, power, scale), "x=%v p=%v s=%v", x, power, scale)
				assert.LessOrEqual(t, math.Abs(got), viseme.Limit)
			}
		}
	}
	assert.Equal(t, viseme.Limit, viseme.Amplify(100, 1, 2))
	assert.Equal(t, -viseme.Limit, viseme.Amplify(-100, 0.2, 2))
}

func TestValidRanges(t *testing.T) {
	assert.True(t, viseme.ValidPower(0.1))
	assert.True(t, viseme.ValidPower(2))
	assert.False(t, viseme.ValidPower(0.05))
	assert.False(t, viseme.ValidPower(2.5))
	assert.True(t, viseme.ValidScale(0))
	assert.False(t, viseme.ValidScale(-0.1))
	assert.False(t, viseme.ValidScale(2.1))
}

func TestIndices(t *testing.T) {
	m := rig.NewMesh("CC_Base_Body", []string{"Brow_Raise_L", "V_Open", "Jaw_Open", "EE", "ee"})
	assert.Equal(t, []int{1, 3}, viseme.Indices(m))
	assert.True(t, viseme.IsViseme("Tight-O"))
	assert.False(t, viseme.IsViseme("ee"))
}

func TestAmplifierApply(t *testing.T) {
	body := rig.NewMesh("CC_Base_Body", []string{"V_Open", "Jaw_Open", "V_Wide"})
	tongue := rig.NewMesh("CC_Base_Tongue", []string{"V_Tongue_Out"})
	a := viseme.NewAmplifier(body, nil, tongue)
	require.Equal(t, 3, a.Slots())

	body.SetWeight(0, 50)
	body.SetWeight(1, 50)
	tongue.SetWeight(0, 36)

	a.Apply(0.5, 1)
	assert.InDelta(t, 70.71, body.Weight(0), 0.01)
	assert.Equal(t, 50.0, body.Weight(1), "non-viseme slot untouched")
	assert.InDelta(t, 60.0, tongue.Weight(0), 1e-9)

	// unchanged input between frames must not compound
	a.Apply(0.5, 1)
	assert.InDelta(t, 70.71, body.Weight(0), 0.01)

	// a fresh raw value is amplified again
	body.SetWeight(0, 25)
	a.Apply(0.5, 1)
	assert.InDelta(t, 50.0, body.Weight(0), 1e-9)
}

func TestAmplifierReset(t *testing.T) {
	body := rig.NewMesh("CC_Base_Body", []string{"V_Open"})
	a := viseme.NewAmplifier(body)

	body.SetWeight(0, 64)
	a.Apply(0.5, 1)
	require.InDelta(t, 80.0, body.Weight(0), 1e-9)

	a.Apply(0.5, 1)
	require.InDelta(t, 80.0, body.Weight(0), 1e-9)

	// without the cache the previous output reads as a fresh input
	a.Reset()
	a.Apply(0.5, 1)
	assert.InDelta(t, math.Sqrt(0.8)*100, body.Weight(0), 1e-9)
}
