// Package loader stages glTF tile content into LoadedModels.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/internal/model"
	"github.com/Faultbox/tilestage/internal/physics"
	"github.com/Faultbox/tilestage/internal/texture"
	"github.com/Faultbox/tilestage/pkg/math"
)

// Loader errors.
var (
	ErrEmptyDocument   = errors.New("document has no nodes")
	ErrNodeCycle       = errors.New("node hierarchy contains a cycle")
	ErrNodeIndex       = errors.New("node index out of range")
	ErrAccessorIndex   = errors.New("accessor index out of range")
	ErrTextureIndex    = errors.New("texture index out of range")
	ErrImageSource     = errors.New("image has no usable source")
	ErrUnknownUpAxis   = errors.New("unknown up axis")
	ErrInvalidWorkers  = errors.New("workers must not be negative")
	ErrUnsupportedFile = errors.New("unsupported asset extension")
)

// UpAxis is the up axis the glTF content was authored with.
type UpAxis uint8

const (
	UpAxisY UpAxis = iota
	UpAxisZ
	UpAxisX
)

// ParseUpAxis parses "Y", "Z" or "X" (case insensitive, empty means Y).
func ParseUpAxis(s string) (UpAxis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "Y":
		return UpAxisY, nil
	case "Z":
		return UpAxisZ, nil
	case "X":
		return UpAxisX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUpAxis, s)
	}
}

func (a UpAxis) String() string {
	switch a {
	case UpAxisY:
		return "Y"
	case UpAxisZ:
		return "Z"
	case UpAxisX:
		return "X"
	default:
		return fmt.Sprintf("UpAxis(%d)", a)
	}
}

// Matrix returns the rotation taking the axis to Z-up.
func (a UpAxis) Matrix() math.DMat4 {
	switch a {
	case UpAxisX:
		return math.XUpToZUp()
	case UpAxisZ:
		return math.Identity()
	default:
		return math.YUpToZUp()
	}
}

// Options configures a Loader.
type Options struct {
	// Physics selects the collision mesh ownership model.
	Physics physics.Backend
	// CreatePhysicsMeshes cooks a collision mesh for every primitive.
	CreatePhysicsMeshes bool
	// Mips controls texture staging.
	Mips texture.MipOptions
	// UpAxis is the authoring up axis of the content.
	UpAxis UpAxis
	// TileTransform places the tile in world space. The zero matrix means identity.
	TileTransform math.DMat4
	// StrictTextures fails the load on a broken texture instead of dropping it.
	StrictTextures bool
	// SmoothNormals averages generated normals at coincident positions.
	SmoothNormals bool
	// Workers bounds LoadFiles concurrency (0 = one per file).
	Workers int
}

// DefaultOptions returns the default loader options.
func DefaultOptions() Options {
	return Options{
		Physics:             physics.BackendShared,
		CreatePhysicsMeshes: true,
		Mips:                texture.DefaultMipOptions(),
		UpAxis:              UpAxisY,
		TileTransform:       math.Identity(),
		Workers:             4,
	}
}

// Loader stages glTF assets. A Loader is safe for concurrent use.
type Loader struct {
	opts   Options
	cooker physics.Cooker
}

// New creates a loader.
func New(opts Options) (*Loader, error) {
	if opts.Workers < 0 {
		return nil, ErrInvalidWorkers
	}
	if opts.UpAxis > UpAxisX {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUpAxis, opts.UpAxis)
	}
	if opts.TileTransform.IsZero() {
		opts.TileTransform = math.Identity()
	}

	l := &Loader{opts: opts}
	if opts.CreatePhysicsMeshes {
		cooker, err := physics.NewCooker(opts.Physics)
		if err != nil {
			return nil, fmt.Errorf("creating cooker: %w", err)
		}
		l.cooker = cooker
	}
	return l, nil
}

// Options returns the loader's effective options.
func (l *Loader) Options() Options {
	return l.opts
}

// SkippedPrimitive records a primitive that produced no model.
type SkippedPrimitive struct {
	Node      int
	Mesh      int
	Primitive int
	Reason    string
}

// Result is the staged content of one asset. The caller owns every model.
type Result struct {
	Source  string
	Models  []*model.LoadedModel
	Skipped []SkippedPrimitive
}

// Release frees every model in the result.
func (r *Result) Release() {
	if r == nil {
		return
	}
	for _, m := range r.Models {
		m.Release()
	}
	r.Models = nil
}

// LoadFile loads a .gltf or .glb file. External buffers and images are
// resolved relative to the file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	res, err := l.load(ctx, doc, os.DirFS(filepath.Dir(path)), path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return res, nil
}

// LoadReader decodes a glTF or GLB stream. Only embedded buffers and images
// can be resolved.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, name string) (*Result, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	res, err := l.load(ctx, doc, nil, name)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return res, nil
}

// LoadDocument stages an already decoded document. fsys resolves relative
// image URIs and may be nil.
func (l *Loader) LoadDocument(ctx context.Context, doc *gltf.Document, fsys fs.FS) (*Result, error) {
	return l.load(ctx, doc, fsys, "")
}

// LoadFiles loads several files with bounded concurrency. Results keep the
// order of paths. On failure every result loaded so far is released.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if l.opts.Workers > 0 {
		g.SetLimit(l.opts.Workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			res, err := l.LoadFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, res := range results {
			res.Release()
		}
		return nil, err
	}
	return results, nil
}

func (l *Loader) load(ctx context.Context, doc *gltf.Document, fsys fs.FS, source string) (*Result, error) {
	start := time.Now()

	if len(doc.Nodes) == 0 {
		return nil, ErrEmptyDocument
	}

	instances, err := traverseScene(doc)
	if err != nil {
		return nil, err
	}

	rtc, err := rtcCenter(doc)
	if err != nil {
		return nil, err
	}
	root := l.opts.TileTransform.
		Mul(math.Translate(rtc[0], rtc[1], rtc[2])).
		Mul(l.opts.UpAxis.Matrix())

	st := newLoadState(doc, fsys, l.opts)
	res := &Result{Source: source}

	for _, inst := range instances {
		node := doc.Nodes[inst.node]
		if node.Mesh == nil {
			continue
		}
		meshIdx := *node.Mesh
		if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
			res.Release()
			return nil, fmt.Errorf("node %d: mesh %d out of range", inst.node, meshIdx)
		}
		mesh := doc.Meshes[meshIdx]
		transform := root.Mul(inst.world)

		for primIdx, prim := range mesh.Primitives {
			if err := ctx.Err(); err != nil {
				res.Release()
				return nil, err
			}

			pos := primitivePos{node: inst.node, mesh: meshIdx, primitive: primIdx}
			m, reason, err := l.loadPrimitive(st, pos, mesh.Name, prim, transform)
			if err != nil {
				res.Release()
				return nil, fmt.Errorf("%s: %w", pos, err)
			}
			if m == nil {
				logger.Debug("primitive skipped",
					zap.String("source", source),
					zap.Stringer("primitive", pos),
					zap.String("reason", reason))
				res.Skipped = append(res.Skipped, SkippedPrimitive{
					Node: pos.node, Mesh: pos.mesh, Primitive: pos.primitive, Reason: reason,
				})
				continue
			}
			res.Models = append(res.Models, m)
		}
	}

	logger.Info("asset staged",
		zap.String("source", source),
		zap.Int("models", len(res.Models)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("images", len(st.images)),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}

type primitivePos struct {
	node, mesh, primitive int
}

func (p primitivePos) String() string {
	return fmt.Sprintf("node %d mesh %d primitive %d", p.node, p.mesh, p.primitive)
}
