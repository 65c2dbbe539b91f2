package batch

import (
	"bonedriver/internal/blendshape"
	"bonedriver/internal/driver"
	"bonedriver/internal/rig"
)

// HostFor exposes a loaded character to the driver.
func HostFor(ch *rig.Character) driver.Host {
	h := driver.Host{
		Body:   meshOrNil(ch.Body()),
		Tongue: meshOrNil(ch.Tongue()),
		Bones:  ch.Skeleton,
	}
	for _, m := range ch.Targets() {
		h.Targets = append(h.Targets, m)
	}
	return h
}

// meshOrNil keeps a missing mesh a nil interface rather than a typed nil.
func meshOrNil(m *rig.Mesh) blendshape.Mesh {
	if m == nil {
		return nil
	}
	return m
}
