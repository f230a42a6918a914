package preview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits a Z-up scene around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	Distance float32
	Pitch    float32 // radians above the XY plane
	Yaw      float32 // radians around +Z

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FOV float32 // vertical, degrees

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera(fov float32) *OrbitCamera {
	if fov <= 0 {
		fov = 45
	}
	return &OrbitCamera{
		Distance:        10,
		Pitch:           0.6,
		Yaw:             0.8,
		MinDistance:     0.01,
		MaxDistance:     1e7,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FOV:             fov,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Frame centers the camera on a box and backs off until it fits the view.
func (c *OrbitCamera) Frame(min, max mgl32.Vec3) {
	c.Center = min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	if radius <= 0 {
		radius = 1
	}
	half := mgl32.DegToRad(c.FOV) / 2
	c.Distance = radius / math32.Sin(half)
	c.MinDistance = radius * 0.01
	c.MaxDistance = radius * 100
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp, sp := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cy, sy := math32.Cos(c.Yaw), math32.Sin(c.Yaw)
	return c.Center.Add(mgl32.Vec3{cp * cy, cp * sy, sp}.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 0, 1})
}

// ProjectionMatrix returns a perspective projection with near and far
// planes scaled to the orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	near := math32.Max(c.Distance*0.001, 1e-4)
	far := c.Distance * 100
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, near, far)
}

// HandleDrag rotates the camera by a mouse drag in pixels.
func (c *OrbitCamera) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom zooms by wheel steps; positive steps move closer.
func (c *OrbitCamera) HandleZoom(steps float32) {
	c.Distance *= 1 - steps*c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}
