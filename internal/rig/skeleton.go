package rig

import (
	"github.com/go-gl/mathgl/mgl64"

	"bonedriver/internal/pose"
)

// Joint is one bone of the skeleton. Parent is -1 for roots and always
// smaller than the joint's own index.
type Joint struct {
	Name         string
	Parent       int
	BindPosition mgl64.Vec3
	BindRotation mgl64.Quat

	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
	posed         bool
}

// SetLocalPose implements pose.Bone.
func (j *Joint) SetLocalPose(position mgl64.Vec3, rotation mgl64.Quat) {
	j.LocalPosition = position
	j.LocalRotation = rotation
	j.posed = true
}

// Posed reports whether the joint was written since the last reset.
func (j *Joint) Posed() bool { return j.posed }

// Skeleton is a parent-ordered joint list with name lookup.
type Skeleton struct {
	joints []*Joint
	byName map[string]int
}

// Joints returns the joints in hierarchy order.
func (s *Skeleton) Joints() []*Joint { return s.joints }

// Joint returns the joint called name.
func (s *Skeleton) Joint(name string) (*Joint, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.joints[i], true
}

// Resolve implements pose.Resolver.
func (s *Skeleton) Resolve(name string) (pose.Bone, bool) {
	j, ok := s.Joint(name)
	if !ok {
		return nil, false
	}
	return j, true
}

// ResetPose returns every joint to its bind pose.
func (s *Skeleton) ResetPose() {
	for _, j := range s.joints {
		j.LocalPosition = j.BindPosition
		j.LocalRotation = j.BindRotation
		j.posed = false
	}
}

// WorldMatrices chains each joint's local transform through its parents.
// Returns a slice of 4×4 matrices indexed by joint index.
func (s *Skeleton) WorldMatrices() []mgl64.Mat4 {
	worlds := make([]mgl64.Mat4, len(s.joints))
	for i, j := range s.joints {
		local := mgl64.Translate3D(j.LocalPosition[0], j.LocalPosition[1], j.LocalPosition[2]).
			Mul4(j.LocalRotation.Normalize().Mat4())

		if j.Parent >= 0 && j.Parent < i {
			worlds[i] = worlds[j.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}

// WorldPositions returns the world-space origin of every joint.
func (s *Skeleton) WorldPositions() []mgl64.Vec3 {
	worlds := s.WorldMatrices()
	out := make([]mgl64.Vec3, len(worlds))
	for i, w := range worlds {
		out[i] = w.Col(3).Vec3()
	}
	return out
}
