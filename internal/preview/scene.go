package preview

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/pkg/math"
)

// SceneBounds returns the world-space box of every model's render data.
func SceneBounds(models []*model.LoadedModel) (min, max vec3d.T, ok bool) {
	min, max = vec3d.MaxVal, vec3d.MinVal
	for _, m := range models {
		if m.RenderData == nil || m.RenderData.Bounds.Empty() {
			continue
		}
		b := m.RenderData.Bounds
		for i := 0; i < 8; i++ {
			corner := vec3d.T{
				float64(pick(i&1, b.Min[0], b.Max[0])),
				float64(pick(i&2, b.Min[1], b.Max[1])),
				float64(pick(i&4, b.Min[2], b.Max[2])),
			}
			p := m.Transform.TransformPoint(corner)
			min = vec3d.Min(&min, &p)
			max = vec3d.Max(&max, &p)
			ok = true
		}
	}
	return min, max, ok
}

func pick(bit int, a, b float32) float32 {
	if bit == 0 {
		return a
	}
	return b
}

// LocalMatrix moves a model transform next to origin and narrows it to
// float32. Tile transforms are in ECEF metres, where float32 alone cannot
// hold positions to better than about a metre.
func LocalMatrix(transform math.DMat4, origin vec3d.T) mgl32.Mat4 {
	local := math.Translate(-origin[0], -origin[1], -origin[2]).Mul(transform)
	return mgl32.Mat4(local.Float32())
}
