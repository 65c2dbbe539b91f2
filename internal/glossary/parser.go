package glossary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bonedriver/internal/mathutil"
)

// Load reads a glossary document from disk.
func Load(path string) (*Glossary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glossary: read %s: %w", path, err)
	}
	g, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("glossary: parse %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a glossary document. JSON is detected by a leading '{';
// anything else is read as YAML with the same keys.
func Parse(data []byte) (*Glossary, error) {
	g, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("glossary: %w", err)
	}
	return g, nil
}

func decode(data []byte) (*Glossary, error) {
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

	g := &Glossary{Bones: make([]Bone, 0, len(doc.ExpressionsByBone))}
	for bi, bd := range doc.ExpressionsByBone {
		if bd.BoneName == "" {
			return nil, fmt.Errorf("bone %d: empty BoneName", bi)
		}
		if len(bd.RefPositionArr) != 3 {
			return nil, fmt.Errorf("bone %q: RefPositionArr has %d values, want 3", bd.BoneName, len(bd.RefPositionArr))
		}
		if len(bd.RefRotationArr) != 4 {
			return nil, fmt.Errorf("bone %q: RefRotationArr has %d values, want 4", bd.BoneName, len(bd.RefRotationArr))
		}

		bone := Bone{
			Name:        bd.BoneName,
			RefPosition: mathutil.Vec3FromArr(bd.RefPositionArr),
			RefRotation: mathutil.NormalizeOrIdent(mathutil.QuatFromXYZW(bd.RefRotationArr)),
			Expressions: make([]Expression, 0, len(bd.Expressions)),
		}

		for ei, ed := range bd.Expressions {
			if ed.BlendShapeIndex < 0 {
				return nil, fmt.Errorf("bone %q expression %d: negative BlendShapeIndex %d", bd.BoneName, ei, ed.BlendShapeIndex)
			}
			if len(ed.TranslateArr) != 3 {
				return nil, fmt.Errorf("bone %q expression %q: TranslateArr has %d values, want 3", bd.BoneName, ed.ExpressionName, len(ed.TranslateArr))
			}
			if len(ed.RotationArr) != 4 {
				return nil, fmt.Errorf("bone %q expression %q: RotationArr has %d values, want 4", bd.BoneName, ed.ExpressionName, len(ed.RotationArr))
			}
			bone.Expressions = append(bone.Expressions, Expression{
				Name:            ed.ExpressionName,
				BlendShapeIndex: ed.BlendShapeIndex,
				Translate:       mathutil.Vec3FromArr(ed.TranslateArr),
				Rotation:        mathutil.NormalizeOrIdent(mathutil.QuatFromXYZW(ed.RotationArr)),
				IsViseme:        ed.IsViseme,
			})
		}

		g.Bones = append(g.Bones, bone)
	}

	return g, nil
}

// BoneNames lists the driven bones in document order.
func (g *Glossary) BoneNames() []string {
	names := make([]string, len(g.Bones))
	for i, b := range g.Bones {
		names[i] = b.Name
	}
	return names
}

// ExpressionsByBone maps each bone to the names of the expressions that drive it.
func (g *Glossary) ExpressionsByBone() map[string][]string {
	m := make(map[string][]string, len(g.Bones))
	for _, b := range g.Bones {
		names := make([]string, len(b.Expressions))
		for i, e := range b.Expressions {
			names[i] = e.Name
		}
		if prev, ok := m[b.Name]; ok {
			m[b.Name] = append(prev, names...)
		} else {
			m[b.Name] = names
		}
	}
	return m
}

// MaxBlendShapeIndex returns the highest referenced slot, or -1 for an empty glossary.
func (g *Glossary) MaxBlendShapeIndex() int {
	hi := -1
	for _, b := range g.Bones {
		for _, e := range b.Expressions {
			if e.BlendShapeIndex > hi {
				hi = e.BlendShapeIndex
			}
		}
	}
	return hi
}
