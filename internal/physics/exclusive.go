package physics

import "github.com/google/uuid"

type exclusiveCooker struct{}

func (exclusiveCooker) Backend() Backend { return BackendExclusive }

func (exclusiveCooker) Cook(positions [][3]float32, indices []uint32) (CollisionMesh, error) {
	data, err := cook(positions, indices)
	if err != nil {
		return nil, err
	}
	return &ExclusiveMesh{id: data.id, data: data}, nil
}

// ExclusiveMesh is a collision mesh with a single owner. It is not safe for
// concurrent use; hand it to one goroutine and destroy it there.
type ExclusiveMesh struct {
	id   uuid.UUID
	data *meshData
}

// Release destroys the mesh. Later calls do nothing.
func (m *ExclusiveMesh) Release() {
	m.data = nil
}

// Destroyed reports whether Release has been called.
func (m *ExclusiveMesh) Destroyed() bool {
	return m.data == nil
}

func (m *ExclusiveMesh) ID() uuid.UUID { return m.id }
func (m *ExclusiveMesh) Ownership() Backend { return BackendExclusive }

func (m *ExclusiveMesh) Vertices() [][3]float32 {
	if m.data == nil {
		return nil
	}
	return m.data.vertices
}

func (m *ExclusiveMesh) Triangles() [][3]uint32 {
	if m.data == nil {
		return nil
	}
	return m.data.triangles
}

func (m *ExclusiveMesh) Bounds() Bounds {
	if m.data == nil {
		return Bounds{}
	}
	return m.data.bounds
}
