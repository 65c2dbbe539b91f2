// Package rig is a headless, in-memory character host: named meshes carrying
// blendshape weights and a joint hierarchy that receives local poses.
package rig

const (
	// DefaultBody is the CC base body mesh name.
	DefaultBody = "CC_Base_Body"
	// DefaultTongue is the CC base tongue mesh name.
	DefaultTongue = "CC_Base_Tongue"
)

// Character groups a skeleton with its meshes.
type Character struct {
	Name       string
	BodyName   string
	TongueName string
	Skeleton   *Skeleton
	Meshes     []*Mesh
}

// Mesh returns the mesh called name.
func (c *Character) Mesh(name string) (*Mesh, bool) {
	for _, m := range c.Meshes {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Body returns the base mesh whose weights drive the character, or nil.
func (c *Character) Body() *Mesh {
	m, _ := c.Mesh(c.BodyName)
	return m
}

// Tongue returns the tongue mesh, or nil.
func (c *Character) Tongue() *Mesh {
	m, _ := c.Mesh(c.TongueName)
	return m
}

// Targets returns every mesh other than body and tongue that has blendshapes.
func (c *Character) Targets() []*Mesh {
	var out []*Mesh
	for _, m := range c.Meshes {
		if m.Name() == c.BodyName || m.Name() == c.TongueName || m.BlendShapeCount() == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// ResetWeights zeroes every mesh.
func (c *Character) ResetWeights() {
	for _, m := range c.Meshes {
		m.Reset()
	}
}
