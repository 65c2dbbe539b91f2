package clip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bonedriver/internal/rig"
)

const talkYAML = `
name: hello
fps: 10
frames:
  - weights:
      CC_Base_Body: {V_Open: 40, Jaw_Open: 20}
  - weights:
      CC_Base_Body: {V_Wide: 70}
      CC_Base_Hair: {Hair_Wind: 10}
  - time: 0.5
    weights:
      CC_Base_Body: {V_Open: 10, Tongue_Bulge: 3}
`

func newCharacter(t *testing.T) *rig.Character {
	t.Helper()
	ch, err := rig.Parse([]byte(`{"meshes":[{"name":"CC_Base_Body","shapes":["Jaw_Open","V_Open","V_Wide"]}]}`))
	require.NoError(t, err)
	return ch
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(talkYAML))
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Name)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 0.0, c.Frames[0].Time)
	assert.InDelta(t, 0.1, c.Frames[1].Time, 1e-12)
	assert.Equal(t, 0.5, c.Duration())
}

func TestParseDefaultsAndErrors(t *testing.T) {
	c, err := Parse([]byte(`{"frames":[{"weights":{}}]}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultFPS, c.FPS)

	_, err = Parse([]byte(`{"frames":[]}`))
	assert.ErrorContains(t, err, "no frames")
	_, err = Parse([]byte(`{"fps":-1,"frames":[{}]}`))
	assert.ErrorContains(t, err, "negative fps")
	_, err = Parse(nil)
	assert.ErrorContains(t, err, "empty document")
}

func TestApply(t *testing.T) {
	c, err := Parse([]byte(talkYAML))
	require.NoError(t, err)
	ch := newCharacter(t)
	body := ch.Body()

	miss := c.Apply(0, ch)
	assert.True(t, miss.Empty())
	assert.Equal(t, []float64{20, 40, 0}, body.Snapshot())

	miss = c.Apply(1, ch)
	assert.Equal(t, []string{"CC_Base_Hair"}, miss.Meshes)
	assert.Equal(t, []float64{0, 0, 70}, body.Snapshot())

	miss = c.Apply(2, ch)
	assert.Equal(t, []string{"CC_Base_Body/Tongue_Bulge"}, miss.Shapes)
	assert.Equal(t, []float64{0, 10, 0}, body.Snapshot())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(talkYAML), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "clip: read")
}
