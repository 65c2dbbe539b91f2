package rig

// Mesh is an in-memory blendshape weight provider.
type Mesh struct {
	name    string
	shapes  []string
	index   map[string]int
	weights []float64
}

// NewMesh creates a mesh with the given shape names, all weights zero.
// When a name repeats, BlendShapeIndex returns its first slot.
func NewMesh(name string, shapes []string) *Mesh {
	m := &Mesh{
		name:    name,
		shapes:  append([]string(nil), shapes...),
		index:   make(map[string]int, len(shapes)),
		weights: make([]float64, len(shapes)),
	}
	for i, s := range shapes {
		if _, dup := m.index[s]; !dup {
			m.index[s] = i
		}
	}
	return m
}

func (m *Mesh) Name() string { return m.name }

func (m *Mesh) BlendShapeCount() int { return len(m.shapes) }

func (m *Mesh) BlendShapeName(i int) string { return m.shapes[i] }

func (m *Mesh) BlendShapeIndex(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

func (m *Mesh) Weight(i int) float64 { return m.weights[i] }

func (m *Mesh) SetWeight(i int, w float64) { m.weights[i] = w }

// SetWeightByName sets a named shape and reports whether it exists.
func (m *Mesh) SetWeightByName(name string, w float64) bool {
	i := m.BlendShapeIndex(name)
	if i < 0 {
		return false
	}
	m.weights[i] = w
	return true
}

// WeightByName returns the weight of a named shape, 0 when absent.
func (m *Mesh) WeightByName(name string) float64 {
	if i := m.BlendShapeIndex(name); i >= 0 {
		return m.weights[i]
	}
	return 0
}

// Snapshot copies the current weights.
func (m *Mesh) Snapshot() []float64 {
	return append([]float64(nil), m.weights...)
}

// Reset zeroes every weight.
func (m *Mesh) Reset() {
	for i := range m.weights {
		m.weights[i] = 0
	}
}
