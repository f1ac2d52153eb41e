package kernel

// MaterialRun tags a contiguous range of triangles with a material id.
// Start and Count are triangle indices, not array offsets.
type MaterialRun struct {
	Start    int    `json:"start"`
	Count    int    `json:"count"`
	Material string `json:"material"`
}

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32     `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32     `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices   []uint32      `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name      string        `json:"name"`     // network or door id this mesh represents
	Materials []MaterialRun `json:"materials,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Append concatenates other onto m, reindexing its triangles, and tags
// the appended triangles with the given material.
func (m *Mesh) Append(other *Mesh, material string) {
	if other == nil || other.IsEmpty() {
		return
	}
	base := uint32(m.VertexCount())
	start := m.TriangleCount()

	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
	m.Materials = append(m.Materials, MaterialRun{
		Start:    start,
		Count:    other.TriangleCount(),
		Material: material,
	})
}
