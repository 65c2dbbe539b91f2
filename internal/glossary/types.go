package glossary

import "github.com/go-gl/mathgl/mgl64"

// Glossary maps driven bones to the blendshapes that move them.
type Glossary struct {
	Bones []Bone
}

// Bone holds the bind pose of one driven bone and its expression offsets.
// RefPosition and RefRotation are fixed once parsed.
type Bone struct {
	Name        string
	RefPosition mgl64.Vec3
	RefRotation mgl64.Quat
	Expressions []Expression
}

// Expression is one blendshape's contribution to a bone at full (100) weight.
type Expression struct {
	Name            string
	BlendShapeIndex int
	Translate       mgl64.Vec3
	Rotation        mgl64.Quat
	IsViseme        bool
}

// document matches the importer's JSON schema (Newtonsoft field names).
type document struct {
	ExpressionsByBone []boneDoc `json:"ExpressionsByBone" yaml:"ExpressionsByBone"`
}

type boneDoc struct {
	BoneName       string          `json:"BoneName" yaml:"BoneName"`
	RefPositionArr []float64       `json:"RefPositionArr" yaml:"RefPositionArr"`
	RefRotationArr []float64       `json:"RefRotationArr" yaml:"RefRotationArr"`
	Expressions    []expressionDoc `json:"Expressions" yaml:"Expressions"`
}

type expressionDoc struct {
	ExpressionName  string    `json:"ExpressionName" yaml:"ExpressionName"`
	BlendShapeIndex int       `json:"BlendShapeIndex" yaml:"BlendShapeIndex"`
	IsViseme        bool      `json:"isViseme" yaml:"isViseme"`
	TranslateArr    []float64 `json:"TranslateArr" yaml:"TranslateArr"`
	RotationArr     []float64 `json:"RotationArr" yaml:"RotationArr"`
}
