// Package clip loads blendshape weight animations and plays them onto a rig.
package clip

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"bonedriver/internal/rig"
)

// DefaultFPS is used when a clip does not state its frame rate.
const DefaultFPS = 30.0

// Frame holds sparse weights keyed by mesh name, then shape name.
type Frame struct {
	Time    float64                       `json:"time" yaml:"time"`
	Weights map[string]map[string]float64 `json:"weights" yaml:"weights"`
}

// Clip is an ordered list of weight frames.
type Clip struct {
	Name   string  `json:"name" yaml:"name"`
	FPS    float64 `json:"fps" yaml:"fps"`
	Frames []Frame `json:"frames" yaml:"frames"`
}

// Miss lists the mesh and shape names a frame referenced but the rig lacks.
type Miss struct {
	Meshes []string
	Shapes []string // "mesh/shape"
}

// Empty reports whether nothing was missed.
func (m Miss) Empty() bool { return len(m.Meshes) == 0 && len(m.Shapes) == 0 }

// Load reads a clip from disk.
func Load(path string) (*Clip, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clip: read %s: %w", path, err)
	}
	c, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("clip: parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a JSON or YAML clip.
func Parse(data []byte) (*Clip, error) {
	c, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("clip: %w", err)
	}
	return c, nil
}

func decode(data []byte) (*Clip, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	var c Clip
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &c); err != nil {
			return nil, err
		}
	}

	if c.FPS < 0 {
		return nil, fmt.Errorf("negative fps %g", c.FPS)
	}
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	if len(c.Frames) == 0 {
		return nil, errors.New("no frames")
	}
	for i := range c.Frames {
		if i > 0 && c.Frames[i].Time == 0 {
			c.Frames[i].Time = float64(i) / c.FPS
		}
	}
	return &c, nil
}

// Len returns the number of frames.
func (c *Clip) Len() int { return len(c.Frames) }

// Duration returns the time of the last frame.
func (c *Clip) Duration() float64 {
	return c.Frames[len(c.Frames)-1].Time
}

// Apply writes frame i onto ch. Every mesh named by the frame is zeroed first,
// so each frame is a complete key for the meshes it touches.
func (c *Clip) Apply(i int, ch *rig.Character) Miss {
	var miss Miss
	f := c.Frames[i]

	meshNames := make([]string, 0, len(f.Weights))
	for name := range f.Weights {
		meshNames = append(meshNames, name)
	}
	sort.Strings(meshNames)

	for _, meshName := range meshNames {
		m, ok := ch.Mesh(meshName)
		if !ok {
			miss.Meshes = append(miss.Meshes, meshName)
			continue
		}
		m.Reset()

		shapes := f.Weights[meshName]
		shapeNames := make([]string, 0, len(shapes))
		for name := range shapes {
			shapeNames = append(shapeNames, name)
		}
		sort.Strings(shapeNames)
		for _, shape := range shapeNames {
			if !m.SetWeightByName(shape, shapes[shape]) {
				miss.Shapes = append(miss.Shapes, meshName+"/"+shape)
			}
		}
	}
	return miss
}
