package constraint

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UpdateMode selects the pass a constraint runs in.
type UpdateMode int

const (
	UpdateNone UpdateMode = iota
	UpdateAdd
	UpdateLimit
)

var updateModeNames = []string{"None", "Add", "Limit"}

func (m UpdateMode) String() string {
	if m >= 0 && int(m) < len(updateModeNames) {
		return updateModeNames[m]
	}
	return "UpdateMode(" + strconv.Itoa(int(m)) + ")"
}

func (m *UpdateMode) UnmarshalJSON(b []byte) error {
	v, err := enumFromJSON(b, updateModeNames)
	if err != nil {
		return fmt.Errorf("update mode: %w", err)
	}
	*m = UpdateMode(v)
	return nil
}

func (m *UpdateMode) UnmarshalYAML(n *yaml.Node) error {
	v, err := enumFromScalar(n.Value, updateModeNames)
	if err != nil {
		return fmt.Errorf("update mode: %w", err)
	}
	*m = UpdateMode(v)
	return nil
}

// CurveMode selects how an Add constraint scales its target.
type CurveMode int

const (
	CurveNone CurveMode = iota
	CurveDirect
	CurveProportional
	CurveSawtooth
)

var curveModeNames = []string{"None", "Direct", "Proportional", "Sawtooth"}

func (c CurveMode) String() string {
	if c >= 0 && int(c) < len(curveModeNames) {
		return curveModeNames[c]
	}
	return "CurveMode(" + strconv.Itoa(int(c)) + ")"
}

func (c *CurveMode) UnmarshalJSON(b []byte) error {
	v, err := enumFromJSON(b, curveModeNames)
	if err != nil {
		return fmt.Errorf("curve mode: %w", err)
	}
	*c = CurveMode(v)
	return nil
}

func (c *CurveMode) UnmarshalYAML(n *yaml.Node) error {
	v, err := enumFromScalar(n.Value, curveModeNames)
	if err != nil {
		return fmt.Errorf("curve mode: %w", err)
	}
	*c = CurveMode(v)
	return nil
}

// ProportionalPolicy decides what a Proportional curve writes. The shipped
// driver computed target*source and then wrote zero; ProportionalZero keeps
// that behavior, ProportionalScale writes the computed product.
type ProportionalPolicy int

const (
	ProportionalZero ProportionalPolicy = iota
	ProportionalScale
)

func (p ProportionalPolicy) String() string {
	if p == ProportionalScale {
		return "scale"
	}
	return "zero"
}

// ParseProportionalPolicy accepts "zero", "scale" or "" (zero).
func ParseProportionalPolicy(s string) (ProportionalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return ProportionalZero, nil
	case "scale":
		return ProportionalScale, nil
	}
	return ProportionalZero, fmt.Errorf("constraint: unknown proportional policy %q", s)
}

// UpdateConstraint derives one blendshape weight from another.
type UpdateConstraint struct {
	SourceIndex int        `json:"SourceIndex" yaml:"SourceIndex"`
	TargetIndex int        `json:"TargetIndex" yaml:"TargetIndex"`
	UpdateMode  UpdateMode `json:"UpdateMode" yaml:"UpdateMode"`
	CurveMode   CurveMode  `json:"CurveMode" yaml:"CurveMode"`
	Gradient    float64    `json:"Gradient" yaml:"Gradient"`
}

func (u UpdateConstraint) String() string {
	return fmt.Sprintf("%s/%s %d -> %d", u.UpdateMode, u.CurveMode, u.SourceIndex, u.TargetIndex)
}

// enumFromJSON accepts a JSON number or a JSON string holding a name or number.
// A JSON null decodes as the zero value.
func enumFromJSON(b []byte, names []string) (int, error) {
	if string(b) == "null" {
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return enumFromScalar(s, names)
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return 0, fmt.Errorf("invalid value %s", string(b))
	}
	if n < 0 || n >= len(names) {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

func enumFromScalar(s string, names []string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= len(names) {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return n, nil
	}
	for i, name := range names {
		if strings.EqualFold(s, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown name %q", s)
}
