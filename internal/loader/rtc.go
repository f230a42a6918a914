package loader

import (
	"encoding/json"
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/qmuntal/gltf"
)

const extCesiumRTC = "CESIUM_RTC"

type cesiumRTC struct {
	Center []float64 `json:"center"`
}

// rtcCenter returns the CESIUM_RTC center of the document, or zero.
func rtcCenter(doc *gltf.Document) (vec3d.T, error) {
	raw, ok := doc.Extensions[extCesiumRTC]
	if !ok || raw == nil {
		return vec3d.T{}, nil
	}

	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return vec3d.T{}, fmt.Errorf("%s: %w", extCesiumRTC, err)
		}
		data = b
	}

	var ext cesiumRTC
	if err := json.Unmarshal(data, &ext); err != nil {
		return vec3d.T{}, fmt.Errorf("%s: %w", extCesiumRTC, err)
	}
	if len(ext.Center) != 3 {
		return vec3d.T{}, fmt.Errorf("%s: center has %d components", extCesiumRTC, len(ext.Center))
	}
	return vec3d.T{ext.Center[0], ext.Center[1], ext.Center[2]}, nil
}
