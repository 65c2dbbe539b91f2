package constraint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lookup resolves a blendshape channel name to its slot index, -1 when absent.
type Lookup func(name string) int

// entryDoc covers both the index form written by the importer for runtime use
// and the named form (ConstraintName/SourceChannels/TargetChannel) it keeps
// for authoring.
type entryDoc struct {
	SourceIndex *int       `json:"SourceIndex" yaml:"SourceIndex"`
	TargetIndex *int       `json:"TargetIndex" yaml:"TargetIndex"`
	UpdateMode  UpdateMode `json:"UpdateMode" yaml:"UpdateMode"`
	CurveMode   CurveMode  `json:"CurveMode" yaml:"CurveMode"`
	Gradient    *float64   `json:"Gradient" yaml:"Gradient"`

	ConstraintName string      `json:"ConstraintName" yaml:"ConstraintName"`
	SourceChannels []string    `json:"SourceChannels" yaml:"SourceChannels"`
	TargetChannel  string      `json:"TargetChannel" yaml:"TargetChannel"`
	Curve          [][]float64 `json:"Curve" yaml:"Curve"`
	Mode           UpdateMode  `json:"Mode" yaml:"Mode"`
}

// Load reads a constraint document from disk.
func Load(path string, lookup Lookup) ([]UpdateConstraint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("constraint: read %s: %w", path, err)
	}
	list, err := decode(raw, lookup)
	if err != nil {
		return nil, fmt.Errorf("constraint: parse %s: %w", path, err)
	}
	return list, nil
}

// Parse decodes a JSON or YAML constraint list. Named entries are compiled to
// slot indices through lookup, one constraint per source channel.
func Parse(data []byte, lookup Lookup) ([]UpdateConstraint, error) {
	list, err := decode(data, lookup)
	if err != nil {
		return nil, fmt.Errorf("constraint: %w", err)
	}
	return list, nil
}

func decode(data []byte, lookup Lookup) ([]UpdateConstraint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	var docs []entryDoc
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
	}

	list := make([]UpdateConstraint, 0, len(docs))
	for i, d := range docs {
		if d.TargetChannel != "" {
			compiled, err := compileNamed(d, lookup)
			if err != nil {
				return nil, fmt.Errorf("entry %d (%s): %w", i, d.ConstraintName, err)
			}
			list = append(list, compiled...)
			continue
		}

		if d.SourceIndex == nil || d.TargetIndex == nil {
			return nil, fmt.Errorf("entry %d: needs SourceIndex and TargetIndex or a TargetChannel", i)
		}
		if *d.SourceIndex < 0 || *d.TargetIndex < 0 {
			return nil, fmt.Errorf("entry %d: negative index %d -> %d", i, *d.SourceIndex, *d.TargetIndex)
		}
		u := UpdateConstraint{
			SourceIndex: *d.SourceIndex,
			TargetIndex: *d.TargetIndex,
			UpdateMode:  d.UpdateMode,
			CurveMode:   d.CurveMode,
			Gradient:    1,
		}
		if d.Gradient != nil {
			u.Gradient = *d.Gradient
		}
		list = append(list, u)
	}
	return list, nil
}

func compileNamed(d entryDoc, lookup Lookup) ([]UpdateConstraint, error) {
	if lookup == nil {
		return nil, errors.New("named constraint without a channel lookup")
	}
	if len(d.SourceChannels) == 0 {
		return nil, errors.New("no SourceChannels")
	}
	target := lookup(d.TargetChannel)
	if target < 0 {
		return nil, fmt.Errorf("unknown target channel %q", d.TargetChannel)
	}

	mode := d.Mode
	if mode == UpdateNone {
		mode = d.UpdateMode
	}
	gradient := curveGradient(d.Curve)

	out := make([]UpdateConstraint, 0, len(d.SourceChannels))
	for _, ch := range d.SourceChannels {
		src := lookup(ch)
		if src < 0 {
			return nil, fmt.Errorf("unknown source channel %q", ch)
		}
		out = append(out, UpdateConstraint{
			SourceIndex: src,
			TargetIndex: target,
			UpdateMode:  mode,
			CurveMode:   d.CurveMode,
			Gradient:    gradient,
		})
	}
	return out, nil
}

// curveGradient is the slope of the first curve segment, 1 without one.
func curveGradient(curve [][]float64) float64 {
	if len(curve) < 2 || len(curve[0]) < 2 || len(curve[1]) < 2 {
		return 1
	}
	dx := curve[1][0] - curve[0][0]
	if dx == 0 {
		return 1
	}
	return (curve[1][1] - curve[0][1]) / dx
}

// Split separates Add and Limit constraints, keeping declaration order.
// Constraints with UpdateNone belong to neither pass and are dropped.
func Split(list []UpdateConstraint) (add, limit []UpdateConstraint) {
	for _, u := range list {
		switch u.UpdateMode {
		case UpdateAdd:
			add = append(add, u)
		case UpdateLimit:
			limit = append(limit, u)
		}
	}
	return add, limit
}

// Targets returns the distinct target slots of list in first-seen order.
func Targets(list []UpdateConstraint) []int {
	seen := make(map[int]bool, len(list))
	var out []int
	for _, u := range list {
		if !seen[u.TargetIndex] {
			seen[u.TargetIndex] = true
			out = append(out, u.TargetIndex)
		}
	}
	return out
}

// Validate partitions list into constraints whose slots exist on a mesh with
// shapeCount blendshapes and those that do not.
func Validate(list []UpdateConstraint, shapeCount int) (ok, rejected []UpdateConstraint) {
	for _, u := range list {
		if u.SourceIndex >= shapeCount || u.TargetIndex >= shapeCount {
			rejected = append(rejected, u)
			continue
		}
		ok = append(ok, u)
	}
	return ok, rejected
}
