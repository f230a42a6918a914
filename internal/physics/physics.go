// Package physics cooks triangle collision meshes for staged tiles.
//
// Two ownership models are supported. BackendShared hands out reference
// counted meshes that many goroutines may hold at once; BackendExclusive hands
// out meshes owned by exactly one caller and destroyed on Release. The backend
// is picked at runtime through configuration.
package physics

import (
	"errors"
	"fmt"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/google/uuid"
)

// Backend selects the ownership model of cooked meshes.
type Backend uint8

const (
	// BackendShared produces reference counted, thread safe meshes.
	BackendShared Backend = iota
	// BackendExclusive produces single-owner meshes with explicit destruction.
	BackendExclusive
)

// String returns the config spelling of the backend.
func (b Backend) String() string {
	switch b {
	case BackendShared:
		return "shared"
	case BackendExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("backend(%d)", b)
	}
}

// Physics errors.
var (
	ErrUnknownBackend = errors.New("unknown physics backend")
	ErrNoTriangles    = errors.New("no valid triangles to cook")
)

// ParseBackend parses "shared" or "exclusive" (case insensitive).
// An empty string selects BackendShared.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared":
		return BackendShared, nil
	case "exclusive":
		return BackendExclusive, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Bounds is an axis aligned box in mesh space.
type Bounds struct {
	Min vec3d.T
	Max vec3d.T
}

// Size returns the extent along each axis.
func (b Bounds) Size() vec3d.T {
	return vec3d.Sub(&b.Max, &b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() vec3d.T {
	return vec3d.T{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// CollisionMesh is a cooked triangle mesh.
//
// Vertices and Triangles return empty slices once the mesh has been
// destroyed. Callers must not modify the returned slices.
type CollisionMesh interface {
	ID() uuid.UUID
	Vertices() [][3]float32
	Triangles() [][3]uint32
	Bounds() Bounds
	Ownership() Backend
	// Release gives up the caller's hold on the mesh. For shared meshes the
	// data is dropped with the last reference; exclusive meshes are destroyed
	// immediately. Releasing more than once is a no-op for exclusive meshes.
	Release()
}

// Cooker turns indexed triangle soup into collision meshes.
type Cooker interface {
	Backend() Backend
	Cook(positions [][3]float32, indices []uint32) (CollisionMesh, error)
}

// NewCooker returns the cooker for the given backend.
func NewCooker(b Backend) (Cooker, error) {
	switch b {
	case BackendShared:
		return sharedCooker{}, nil
	case BackendExclusive:
		return exclusiveCooker{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBackend, b)
	}
}
