package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const rigYAML = `
bones:
  - {name: CC_Base_JawRoot, position: [0, 0.02, 0]}
meshes:
  - {name: CC_Base_Body, shapes: [Jaw_Open, V_Open, Mouth_Lips_Open]}
`

const glossaryYAML = `
ExpressionsByBone:
  - BoneName: CC_Base_JawRoot
    RefPositionArr: [0, 0.02, 0]
    RefRotationArr: [0, 0, 0, 1]
    Expressions:
      - {ExpressionName: Jaw_Open, BlendShapeIndex: 0, TranslateArr: [0, -0.02, 0], RotationArr: [0, 0, 0, 1]}
`

const constraintYAML = `
- {SourceIndex: 0, TargetIndex: 2, UpdateMode: Add, CurveMode: Sawtooth}
- {SourceIndex: 1, TargetIndex: 9, UpdateMode: Limit, CurveMode: None}
`

func TestCurve(t *testing.T) {
	out, err := execute(t, "curve", "--power", "0.5", "--step", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "power=0.5 scale=1")
	assert.Contains(t, out, "  50.0 ->   70.71")
	assert.Contains(t, out, " 100.0 ->  100.00")

	_, err = execute(t, "curve", "--power", "5")
	assert.ErrorContains(t, err, "power 5 outside")
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "inspect",
		"--glossary", writeFile(t, dir, "g.yaml", glossaryYAML),
		"--constraints", writeFile(t, dir, "c.yaml", constraintYAML),
		"--rig", writeFile(t, dir, "rig.yaml", rigYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "Glossary: 1 bones, highest slot 0")
	assert.Contains(t, out, "Jaw_Open[0]")
	assert.Contains(t, out, "Constraints: 1 add, 0 limit, 1 targets")
	assert.Contains(t, out, "Mouth_Lips_Open[2]")

	_, err = execute(t, "inspect")
	assert.ErrorContains(t, err, "nothing to inspect")
}

func TestBakeSingleJob(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	stdout, err := execute(t, "bake",
		"--rig", writeFile(t, dir, "rig.yaml", rigYAML),
		"--glossary", writeFile(t, dir, "g.yaml", glossaryYAML),
		"--clip", writeFile(t, dir, "talk.yaml", "frames:\n  - weights: {CC_Base_Body: {Jaw_Open: 50}}\n"),
		"--out", out, "--workers", "1", "--preview", "--format", "tga")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Baked 1/1 jobs")
	assert.FileExists(t, filepath.Join(out, "talk.pose.json"))
	assert.FileExists(t, filepath.Join(out, "talk.tga"))
	assert.FileExists(t, filepath.Join(out, "manifest.json"))
}

func TestBakeReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bake.yaml", `
output_dir: out
jobs:
  - {name: lost, rig: nope.yaml, glossary: g.yaml, clip: c.yaml}
`)
	stdout, err := execute(t, "bake", "-c", cfg)
	assert.ErrorContains(t, err, "1 of 1 jobs failed")
	assert.Contains(t, stdout, "FAIL lost")
	assert.FileExists(t, filepath.Join(dir, "out", "manifest.json"))
}

func TestBakeFlagJobResolvesAgainstWorkingDir(t *testing.T) {
	work := t.TempDir()
	cfgDir := filepath.Join(work, "configs")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	cfg := writeFile(t, cfgDir, "bake.yaml", "driver:\n  viseme_scale: 1.5\n")

	writeFile(t, work, "rig.yaml", rigYAML)
	writeFile(t, work, "g.yaml", glossaryYAML)
	writeFile(t, work, "talk.yaml", "frames:\n  - weights: {CC_Base_Body: {Jaw_Open: 50}}\n")
	t.Chdir(work)

	stdout, err := execute(t, "bake", "-c", cfg,
		"--rig", "rig.yaml", "--glossary", "g.yaml", "--clip", "talk.yaml",
		"--out", "out", "--amplify", "--scale", "0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Baked 1/1 jobs")
	assert.FileExists(t, filepath.Join(work, "out", "talk.pose.json"))
	assert.NoDirExists(t, filepath.Join(cfgDir, "out"))
}
