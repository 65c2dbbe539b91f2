// Package blendshape defines the weight-provider contracts the driver reads and
// writes every frame. Weights use the 0-100 scale; writes may leave that range.
package blendshape

// Reader exposes blendshape weights by slot index.
type Reader interface {
	Weight(i int) float64
}

// Weights is a readable and writable weight vector.
type Weights interface {
	Reader
	SetWeight(i int, w float64)
}

// Mesh is a named weight provider with named shape slots.
type Mesh interface {
	Weights
	Name() string
	BlendShapeCount() int
	BlendShapeName(i int) string
	// BlendShapeIndex returns -1 when the mesh has no shape with that name.
	BlendShapeIndex(name string) int
}

// Names returns the shape names of m in slot order.
func Names(m Mesh) []string {
	n := m.BlendShapeCount()
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = m.BlendShapeName(i)
	}
	return names
}

// Lookup adapts m to a name -> index function. A nil mesh resolves nothing.
func Lookup(m Mesh) func(string) int {
	if m == nil {
		return func(string) int { return -1 }
	}
	return m.BlendShapeIndex
}

// Slice is a plain weight vector, handy for pure evaluation.
type Slice []float64

func (s Slice) Weight(i int) float64 { return s[i] }

func (s Slice) SetWeight(i int, w float64) { s[i] = w }
