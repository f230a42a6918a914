package physics

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type sharedCooker struct{}

func (sharedCooker) Backend() Backend { return BackendShared }

func (sharedCooker) Cook(positions [][3]float32, indices []uint32) (CollisionMesh, error) {
	data, err := cook(positions, indices)
	if err != nil {
		return nil, err
	}
	m := &SharedMesh{id: data.id, data: data}
	m.refs.Store(1)
	return m, nil
}

// SharedMesh is a reference counted collision mesh. A freshly cooked mesh
// holds one reference. It is safe for concurrent use.
type SharedMesh struct {
	id   uuid.UUID
	refs atomic.Int64

	mu   sync.RWMutex
	data *meshData
}

// Retain adds a reference and returns the mesh for chaining.
// Retaining a mesh whose last reference is gone has no effect.
func (m *SharedMesh) Retain() *SharedMesh {
	for {
		n := m.refs.Load()
		if n <= 0 {
			return m
		}
		if m.refs.CompareAndSwap(n, n+1) {
			return m
		}
	}
}

// RefCount returns the current number of references.
func (m *SharedMesh) RefCount() int64 {
	return m.refs.Load()
}

// Release drops one reference; the last one frees the mesh data.
func (m *SharedMesh) Release() {
	for {
		n := m.refs.Load()
		if n <= 0 {
			return
		}
		if m.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				m.mu.Lock()
				m.data = nil
				m.mu.Unlock()
			}
			return
		}
	}
}

func (m *SharedMesh) ID() uuid.UUID { return m.id }
func (m *SharedMesh) Ownership() Backend { return BackendShared }

func (m *SharedMesh) Vertices() [][3]float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil
	}
	return m.data.vertices
}

func (m *SharedMesh) Triangles() [][3]uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil
	}
	return m.data.triangles
}

func (m *SharedMesh) Bounds() Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return Bounds{}
	}
	return m.data.bounds
}
