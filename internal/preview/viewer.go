package preview

import (
	"context"
	"fmt"
	"path/filepath"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/tilestage/internal/loader"
	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/internal/water"
)

// Config holds viewer settings.
type Config struct {
	Width     int
	Height    int
	VSync     bool
	FOV       float32
	Wireframe bool
}

// LoadFunc stages the asset being previewed.
type LoadFunc func(ctx context.Context) (*loader.Result, error)

// drawItem is one uploaded model with its per-draw uniforms.
type drawItem struct {
	mesh        *gpuMesh
	model       mgl32.Mat4
	baseTex     uint32
	waterTex    uint32
	factor      [4]float32
	baseCh      int32
	waterCh     int32
	waterType   int32
	waterTrans  [2]float32
	waterScale  float32
	doubleSided bool
}

// Viewer shows one staged asset and restages it on request.
type Viewer struct {
	win       *Window
	prog      *program
	cam       *OrbitCamera
	items     []drawItem
	result    *loader.Result
	origin    vec3d.T
	wireframe bool
}

// Run opens a window and draws the asset returned by load until the window
// is closed or ctx is done. A value on reload restages the asset. Run must
// be called from the main OS thread.
func Run(ctx context.Context, cfg Config, source string, load LoadFunc, reload <-chan struct{}) error {
	win, err := NewWindow(WindowConfig{
		Title:  "stageview - " + filepath.Base(source),
		Width:  cfg.Width,
		Height: cfg.Height,
		VSync:  cfg.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	prog, err := newProgram()
	if err != nil {
		return fmt.Errorf("compiling preview shader: %w", err)
	}
	defer prog.delete()

	v := &Viewer{win: win, prog: prog, cam: NewOrbitCamera(cfg.FOV), wireframe: cfg.Wireframe}
	defer v.clear()

	if err := v.stage(ctx, load, true); err != nil {
		return err
	}

	gl.Enable(gl.DEPTH_TEST)
	dragging := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			if err := v.stage(ctx, load, false); err != nil {
				logger.Warn("reload failed", zap.Error(err))
			}
		default:
		}

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.MouseButtonEvent:
				if e.Button == sdl.BUTTON_LEFT {
					dragging = e.State == sdl.PRESSED
				}
			case *sdl.MouseMotionEvent:
				if dragging {
					v.cam.HandleDrag(float32(e.XRel), float32(e.YRel))
				}
			case *sdl.MouseWheelEvent:
				v.cam.HandleZoom(float32(e.Y))
			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN {
					continue
				}
				switch e.Keysym.Sym {
				case sdl.K_ESCAPE:
					return nil
				case sdl.K_w:
					v.wireframe = !v.wireframe
				case sdl.K_r:
					if err := v.stage(ctx, load, false); err != nil {
						logger.Warn("reload failed", zap.Error(err))
					}
				case sdl.K_f:
					v.frame()
				}
			}
		}

		v.render()
		win.SwapBuffers()
	}
}

// stage loads the asset and replaces the uploaded scene. The camera is
// reframed only when reframe is set so reloads keep the view.
func (v *Viewer) stage(ctx context.Context, load LoadFunc, reframe bool) error {
	res, err := load(ctx)
	if err != nil {
		return err
	}
	v.clear()
	v.result = res

	v.origin = vec3d.T{}
	if min, max, ok := SceneBounds(res.Models); ok {
		v.origin = vec3d.T{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
	}
	for _, m := range res.Models {
		if item, ok := newDrawItem(m, v.origin); ok {
			v.items = append(v.items, item)
		}
	}
	v.win.SetTitle(fmt.Sprintf("stageview - %s (%d models)", filepath.Base(res.Source), len(v.items)))
	logger.Info("scene uploaded", zap.String("source", res.Source), zap.Int("models", len(v.items)))

	if reframe {
		v.frame()
	}
	return nil
}

// frame points the camera at the whole scene.
func (v *Viewer) frame() {
	if v.result == nil {
		return
	}
	min, max, ok := SceneBounds(v.result.Models)
	if !ok {
		return
	}
	lo := vec3d.Sub(&min, &v.origin)
	hi := vec3d.Sub(&max, &v.origin)
	v.cam.Frame(
		mgl32.Vec3{float32(lo[0]), float32(lo[1]), float32(lo[2])},
		mgl32.Vec3{float32(hi[0]), float32(hi[1]), float32(hi[2])},
	)
}

func newDrawItem(m *model.LoadedModel, origin vec3d.T) (drawItem, bool) {
	mesh := uploadMesh(m.RenderData)
	if mesh == nil {
		return drawItem{}, false
	}
	mat := m.RenderData.Material
	item := drawItem{
		mesh:        mesh,
		model:       LocalMatrix(m.Transform, origin),
		baseTex:     uploadTexture(m.BaseColorTexture),
		factor:      [4]float32{float32(mat.BaseColorFactor[0]), float32(mat.BaseColorFactor[1]), float32(mat.BaseColorFactor[2]), float32(mat.BaseColorFactor[3])},
		baseCh:      int32(m.TextureCoordinateParameters[model.ParamBaseColor]),
		waterCh:     int32(m.TextureCoordinateParameters[model.ParamWaterMask]),
		waterType:   waterTypeUniform(m.WaterMask.Type()),
		waterScale:  float32(m.WaterMask.Scale()),
		doubleSided: mat.DoubleSided,
	}
	t := m.WaterMask.Translation()
	item.waterTrans = [2]float32{float32(t[0]), float32(t[1])}
	if tex, ok := m.WaterMask.Texture(); ok {
		item.waterTex = uploadTexture(tex)
	}
	return item, true
}

func waterTypeUniform(t water.WaterMaskType) int32 {
	switch t {
	case water.OnlyWater:
		return 1
	case water.MixOfLandAndWater:
		return 2
	default:
		return 0
	}
}

func (v *Viewer) render() {
	w, h := v.win.DrawableSize()
	gl.Viewport(0, 0, w, h)
	gl.ClearColor(0.12, 0.12, 0.15, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	aspect := float32(w) / float32(max(h, 1))
	viewProj := v.cam.ProjectionMatrix(aspect).Mul4(v.cam.ViewMatrix())

	p := v.prog
	gl.UseProgram(p.id)
	gl.UniformMatrix4fv(p.viewProj, 1, false, &viewProj[0])
	gl.Uniform3f(p.lightDir, -0.3, -0.4, -1)
	gl.Uniform1i(p.baseColor, 0)
	gl.Uniform1i(p.waterMask, 1)

	for i := range v.items {
		it := &v.items[i]
		if it.doubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}
		gl.UniformMatrix4fv(p.model, 1, false, &it.model[0])
		gl.Uniform4f(p.baseColorFactor, it.factor[0], it.factor[1], it.factor[2], it.factor[3])
		gl.Uniform1i(p.baseColorChannel, it.baseCh)
		gl.Uniform1i(p.waterChannel, it.waterCh)
		gl.Uniform1i(p.waterType, it.waterType)
		gl.Uniform2f(p.waterTrans, it.waterTrans[0], it.waterTrans[1])
		gl.Uniform1f(p.waterScale, it.waterScale)

		hasBase := int32(0)
		if it.baseTex != 0 {
			hasBase = 1
		}
		gl.Uniform1i(p.hasBaseColor, hasBase)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, it.baseTex)
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, it.waterTex)

		it.mesh.draw()
	}
	gl.BindVertexArray(0)
}

// clear deletes GPU objects and releases the staged result.
func (v *Viewer) clear() {
	for i := range v.items {
		it := &v.items[i]
		it.mesh.delete()
		for _, tex := range []uint32{it.baseTex, it.waterTex} {
			if tex != 0 {
				gl.DeleteTextures(1, &tex)
			}
		}
	}
	v.items = nil
	v.result.Release()
	v.result = nil
}
