package rig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"bonedriver/internal/mathutil"
)

// document is the rig description schema.
type document struct {
	Name   string    `json:"name" yaml:"name"`
	Body   string    `json:"body" yaml:"body"`
	Tongue string    `json:"tongue" yaml:"tongue"`
	Bones  []boneDoc `json:"bones" yaml:"bones"`
	Meshes []meshDoc `json:"meshes" yaml:"meshes"`
}

type boneDoc struct {
	Name     string    `json:"name" yaml:"name"`
	Parent   string    `json:"parent" yaml:"parent"`
	Position []float64 `json:"position" yaml:"position"`
	Rotation []float64 `json:"rotation" yaml:"rotation"` // [x, y, z, w]
	Euler    []float64 `json:"euler" yaml:"euler"`       // XYZ degrees, used when rotation is absent
}

type meshDoc struct {
	Name   string   `json:"name" yaml:"name"`
	Shapes []string `json:"shapes" yaml:"shapes"`
}

// Load reads a rig description from disk.
func Load(path string) (*Character, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rig: read %s: %w", path, err)
	}
	c, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("rig: parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a JSON or YAML rig description.
func Parse(data []byte) (*Character, error) {
	c, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	return c, nil
}

func decode(data []byte) (*Character, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	var doc document
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
	}

	c := &Character{
		Name:       doc.Name,
		BodyName:   doc.Body,
		TongueName: doc.Tongue,
		Skeleton:   &Skeleton{byName: make(map[string]int, len(doc.Bones))},
	}
	if c.BodyName == "" {
		c.BodyName = DefaultBody
	}
	if c.TongueName == "" {
		c.TongueName = DefaultTongue
	}

	for i, bd := range doc.Bones {
		if bd.Name == "" {
			return nil, fmt.Errorf("bone %d: empty name", i)
		}
		if _, dup := c.Skeleton.byName[bd.Name]; dup {
			return nil, fmt.Errorf("bone %q: duplicate name", bd.Name)
		}

		parent := -1
		if bd.Parent != "" {
			p, ok := c.Skeleton.byName[bd.Parent]
			if !ok {
				return nil, fmt.Errorf("bone %q: parent %q must be declared before it", bd.Name, bd.Parent)
			}
			parent = p
		}

		pos := mgl64.Vec3{}
		if bd.Position != nil {
			if len(bd.Position) != 3 {
				return nil, fmt.Errorf("bone %q: position has %d values, want 3", bd.Name, len(bd.Position))
			}
			pos = mathutil.Vec3FromArr(bd.Position)
		}

		rot := mgl64.QuatIdent()
		switch {
		case bd.Rotation != nil:
			if len(bd.Rotation) != 4 {
				return nil, fmt.Errorf("bone %q: rotation has %d values, want 4", bd.Name, len(bd.Rotation))
			}
			rot = mathutil.NormalizeOrIdent(mathutil.QuatFromXYZW(bd.Rotation))
		case bd.Euler != nil:
			if len(bd.Euler) != 3 {
				return nil, fmt.Errorf("bone %q: euler has %d values, want 3", bd.Name, len(bd.Euler))
			}
			rot = mathutil.EulerToQuat(mathutil.Deg3ToRad(bd.Euler))
		}

		c.Skeleton.byName[bd.Name] = len(c.Skeleton.joints)
		c.Skeleton.joints = append(c.Skeleton.joints, &Joint{
			Name:          bd.Name,
			Parent:        parent,
			BindPosition:  pos,
			BindRotation:  rot,
			LocalPosition: pos,
			LocalRotation: rot,
		})
	}

	seen := make(map[string]bool, len(doc.Meshes))
	for i, md := range doc.Meshes {
		if md.Name == "" {
			return nil, fmt.Errorf("mesh %d: empty name", i)
		}
		if seen[md.Name] {
			return nil, fmt.Errorf("mesh %q: duplicate name", md.Name)
		}
		seen[md.Name] = true
		c.Meshes = append(c.Meshes, NewMesh(md.Name, md.Shapes))
	}

	return c, nil
}
