// Package mirror copies base mesh blendshape weights onto other meshes that
// carry shapes of the same name.
package mirror

import (
	"go.uber.org/zap"

	"bonedriver/internal/blendshape"
)

// Target is one (mesh, slot) receiving a mirrored weight.
type Target struct {
	Mesh  blendshape.Mesh
	Index int
}

// Slot maps one base mesh slot to its targets.
type Slot struct {
	Index   int
	Targets []Target
}

// Table is the name-matched slot map, built once per setup.
type Table struct {
	base  blendshape.Mesh
	slots []Slot
}

// Build matches every base shape name against the target meshes. Nil meshes,
// the base mesh itself and meshes without blendshapes are left out.
func Build(base blendshape.Mesh, targets []blendshape.Mesh, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{base: base}
	if base == nil {
		return t
	}

	var meshes []blendshape.Mesh
	for i, m := range targets {
		switch {
		case m == nil:
			logger.Debug("mirror target missing", zap.Int("position", i))
		case m == base:
		case m.BlendShapeCount() == 0:
			logger.Debug("mirror target has no blendshapes", zap.String("mesh", m.Name()))
		default:
			meshes = append(meshes, m)
		}
	}

	n := base.BlendShapeCount()
	t.slots = make([]Slot, n)
	for i := 0; i < n; i++ {
		name := base.BlendShapeName(i)
		slot := Slot{Index: i}
		for _, m := range meshes {
			if idx := m.BlendShapeIndex(name); idx >= 0 {
				slot.Targets = append(slot.Targets, Target{Mesh: m, Index: idx})
			}
		}
		t.slots[i] = slot
	}

	logger.Debug("mirror table built",
		zap.String("base", base.Name()),
		zap.Int("meshes", len(meshes)),
		zap.Int("targets", t.TargetCount()))
	return t
}

// Apply copies every base weight to its targets.
func (t *Table) Apply() {
	for _, s := range t.slots {
		if len(s.Targets) == 0 {
			continue
		}
		w := t.base.Weight(s.Index)
		for _, tgt := range s.Targets {
			tgt.Mesh.SetWeight(tgt.Index, w)
		}
	}
}

// Slots returns the slot map.
func (t *Table) Slots() []Slot { return t.slots }

// TargetCount returns the total number of (mesh, slot) targets.
func (t *Table) TargetCount() int {
	n := 0
	for _, s := range t.slots {
		n += len(s.Targets)
	}
	return n
}
