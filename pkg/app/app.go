// Package app wires the scene DSL to the meshing and rendering back ends.
// Its result types are JSON-serializable so a frontend can consume them
// directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/chazu/sdfvm/pkg/compile"
	"github.com/chazu/sdfvm/pkg/engine"
	"github.com/chazu/sdfvm/pkg/frame"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/chazu/sdfvm/pkg/kernel"
	"github.com/chazu/sdfvm/pkg/kernel/sdfx"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/march"
	"github.com/chazu/sdfvm/pkg/program"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// colorPalette is a default palette used to assign distinct colors to scenes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// DefaultExtrude is the height 2D scenes are extruded to before meshing.
const DefaultExtrude = 0.2

// Options configures an App. Zero values select defaults.
type Options struct {
	Cells   int     // marching cubes resolution
	Extrude float64 // extrusion height for 2D scenes
	Workers int     // scenes meshed concurrently

	// Wrap, when positive, meshes 3D scenes by shrink-wrapping a Wrap by
	// 2*Wrap spherical grid instead of running marching cubes. It suits
	// star-shaped scenes centered on the origin.
	Wrap  int
	March march.Config // tracer budget for shrink-wrapping and rendering

	// Onion, when positive, hollows every scene into a shell of this
	// thickness before meshing or rendering.
	Onion float64
}

// App evaluates scene source and turns it into meshes or frames.
type App struct {
	engine  *engine.Engine
	kernel  *sdfx.Kernel
	extrude float64
	workers int
	wrap    int
	march   march.Config
	onion   float64
}

// MeshData is the JSON-serializable mesh format sent to a frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning with its source
// position. Line and Col are zero when the position is unknown.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of Evaluate.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// CompileResult is the outcome of Compile: the evaluated scene plus one
// program per root.
type CompileResult struct {
	Scene    *engine.Scene     `json:"-"`
	Programs []*compile.Result `json:"-"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`
}

// OK reports whether compilation produced no errors.
func (r CompileResult) OK() bool { return len(r.Errors) == 0 }

// New creates an App with its own engine and the sdfx kernel.
func New(opts Options) *App {
	if opts.Extrude <= 0 {
		opts.Extrude = DefaultExtrude
	}
	if opts.March == (march.Config{}) {
		opts.March = march.DefaultConfig()
	}
	return &App{
		engine:  engine.NewEngine(),
		kernel:  sdfx.New(opts.Cells),
		extrude: opts.Extrude,
		workers: opts.Workers,
		wrap:    opts.Wrap,
		march:   opts.March,
		onion:   opts.Onion,
	}
}

// Compile evaluates source and lowers every root to its own program.
func (a *App) Compile(source string) CompileResult {
	result := CompileResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Logger().Error("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	result.Scene = scene
	for _, w := range scene.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	progs, err := compile.CompileEach(scene.Graph)
	if err != nil {
		logging.Logger().Error("compile failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, res := range progs {
		res.Program2, res.Program3 = a.hollow(res.Program2, res.Program3)
	}
	result.Programs = progs
	return result
}

// hollow appends the configured onion shell to whichever program is
// populated.
func (a *App) hollow(p2 program.Program2, p3 program.Program3) (program.Program2, program.Program3) {
	if a.onion <= 0 {
		return p2, p3
	}
	if p2.Len() > 0 {
		p2 = append(slices.Clip(p2), program.Onion2(a.onion))
	}
	if p3.Len() > 0 {
		p3 = append(slices.Clip(p3), program.Onion3(a.onion))
	}
	return p2, p3
}

// Evaluate compiles source and meshes every root. This is the primary
// entry point for an editor frontend.
func (a *App) Evaluate(source string) EvalResult {
	cr := a.Compile(source)
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   cr.Errors,
		Warnings: cr.Warnings,
	}
	if !cr.OK() || len(cr.Programs) == 0 {
		return result
	}

	meshes, err := a.meshAll(cr.Programs)
	if err != nil {
		logging.Logger().Error("tessellation failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	for i, m := range meshes {
		if m.IsEmpty() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("%s: no surface found at this resolution", m.Name),
			})
		} else {
			lo, hi, _ := m.Bounds()
			logging.Logger().Debug("mesh built", "name", m.Name,
				"triangles", m.TriangleCount(), "min", lo, "max", hi)
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

// meshAll tessellates each program concurrently, keeping input order.
func (a *App) meshAll(progs []*compile.Result) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, len(progs))
	var g errgroup.Group
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}
	for i, res := range progs {
		g.Go(func() error {
			m, err := a.mesh(res)
			if err != nil {
				return fmt.Errorf("%s: %w", res.Name, err)
			}
			m.Name = res.Name
			meshes[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

func (a *App) mesh(res *compile.Result) (*kernel.Mesh, error) {
	switch res.Dim {
	case graph.Dim2:
		return a.kernel.Program2(res.Program2, a.extrude)
	case graph.Dim3:
		if a.wrap > 0 {
			return a.shrinkWrap(res)
		}
		return a.kernel.Program3(res.Program3)
	default:
		return nil, errors.New("scene has no shapes")
	}
}

// shrinkWrap marches inward from a sphere enclosing the program's bounds.
func (a *App) shrinkWrap(res *compile.Result) (*kernel.Mesh, error) {
	radius := program.DefaultExtent
	if box, ok := res.Program3.Bounds(); ok {
		far := v3.Vec{
			X: math.Max(math.Abs(box.Min.X), math.Abs(box.Max.X)),
			Y: math.Max(math.Abs(box.Min.Y), math.Abs(box.Max.Y)),
			Z: math.Max(math.Abs(box.Min.Z), math.Abs(box.Max.Z)),
		}
		radius = far.Length()
	}
	// Start outside the surface so the first step cannot land inside.
	radius = 1.1*radius + a.march.SurfDist
	return kernel.ShrinkWrap(context.Background(), res.Program3, radius, a.wrap, 2*a.wrap, a.march, 0)
}

// RenderOptions controls Render.
type RenderOptions struct {
	Width, Height int
	Workers       int
	Camera        frame.Camera
	March         march.Config // zero selects the App's budget
	Slice         march.Slice
	// Probe, when set, overlays the iso-distance shell through this point.
	Probe *v3.Vec
	// Zoom is the field-space height of a 2D frame.
	Zoom float64
}

// RenderResult is a shaded frame of the evaluated scene. Stats is nil for
// 2D scenes and when evaluation failed.
type RenderResult struct {
	Image    *image.RGBA
	Stats    *frame.Stats
	Dim      graph.Dim
	Errors   []EvalErrorData
	Warnings []EvalErrorData
}

// Render evaluates source and ray-marches the whole scene. DSL problems are
// reported in the result; the returned error is reserved for render
// failures such as cancellation.
func (a *App) Render(ctx context.Context, source string, opts RenderOptions) (*RenderResult, error) {
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	out := &RenderResult{}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			out.Errors = append(out.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return out, nil
	}
	for _, w := range scene.Warnings {
		out.Warnings = append(out.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	out.Dim = scene.Dim
	prog2, prog3 := a.hollow(scene.Program2, scene.Program3)

	if scene.Dim == graph.Dim2 {
		f, err := frame.Render2(ctx, opts.Width, opts.Height, prog2, opts.Zoom, opts.Workers)
		if err != nil {
			return nil, err
		}
		out.Image = f.Image()
		return out, nil
	}

	cfg := opts.March
	if cfg == (march.Config{}) {
		cfg = a.march
	}
	field := march.Field(prog3)
	tracer := frame.Scene3{Field: field, Config: cfg, Slice: opts.Slice}
	if opts.Probe != nil {
		tracer.Probe = march.ProbeAt(field, *opts.Probe)
	}
	cam := opts.Camera
	if cam == nil {
		cam = frame.Orbit{Dist: 4}
	}
	f, err := frame.Render(ctx, opts.Width, opts.Height, cam, tracer, opts.Workers)
	if err != nil {
		return nil, err
	}
	st := f.Stats()
	out.Image = f.Image()
	out.Stats = &st
	return out, nil
}
