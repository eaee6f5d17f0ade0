package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/chazu/sdfvm/pkg/primitive"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: half-plane -> half_plane
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a v2.Vec.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float returns keyword name as a number, or def when absent.
func (pa kwArgs) float(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

func (pa kwArgs) vec3(name string, def v3.Vec) (v3.Vec, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return vec, nil
}

func (pa kwArgs) vec2(name string, def v2.Vec) (v2.Vec, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec2(v)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return vec, nil
}

// depth returns a non-negative integer keyword.
func (pa kwArgs) depth(name string, def uint) (uint, error) {
	f, err := pa.float(name, float64(def))
	if err != nil {
		return 0, err
	}
	if f < 0 || f > maxFractalDepth {
		return 0, fmt.Errorf("%s: must be between 0 and %d, got %g", name, maxFractalDepth, f)
	}
	return uint(f), nil
}

// maxFractalDepth bounds fractal refinement so evaluation stays interactive.
const maxFractalDepth = 8

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toNumbers converts a list or array of n numbers.
func toNumbers(s zygo.Sexp, n int) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	if len(items) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(items))
	}
	out := make([]float64, n)
	for i, it := range items {
		if out[i], err = toFloat64(it); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// toVec3 extracts a v3.Vec from a sexpVec3 or a three element list.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	if f, err := toNumbers(s, 3); err == nil {
		return v3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 extracts a v2.Vec from a sexpVec2 or a two element list.
func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	if f, err := toNumbers(s, 2); err == nil {
		return v2.Vec{X: f[0], Y: f[1]}, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toRotation accepts Euler angles as a vec3 or a single angle about Z, the
// only rotation that applies to 2D shapes.
func toRotation(s zygo.Sexp) (v3.Vec, error) {
	if f, err := toFloat64(s); err == nil {
		return v3.Vec{Z: f}, nil
	}
	return toVec3(s)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph construction
// ---------------------------------------------------------------------------

// builder adds nodes to the graph under construction. IDs come from a
// per-evaluation sequence so the same source always yields the same graph.
type builder struct {
	g   *graph.Graph
	seq int
}

func (b *builder) add(kind graph.NodeKind, label string, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	b.seq++
	id := graph.NewNodeID(fmt.Sprintf("%s#%d", label, b.seq))
	b.g.AddNode(&graph.Node{ID: id, Kind: kind, Children: children, Data: data})
	return &sexpNodeRef{id: id}
}

// rename assigns a user name to an existing node.
func (b *builder) rename(ref *sexpNodeRef, name string) error {
	if prev := b.g.Lookup(name); prev != nil && prev.ID != ref.id {
		return fmt.Errorf("name %q is already used", name)
	}
	n := b.g.Get(ref.id)
	if n.Name != "" && n.Name != name {
		delete(b.g.NameIndex, n.Name)
	}
	n.Name = name
	b.g.NameIndex[name] = n.ID
	ref.name = name
	return nil
}

// finish applies the options shared by every shape and operator:
// :at and :rot wrap the node in a transform, :name names the outermost
// node.
func (b *builder) finish(ref *sexpNodeRef, pa kwArgs) (zygo.Sexp, error) {
	td := graph.TransformData{}
	if v, ok := pa.kw["at"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			if v2v, err2 := toVec2(v); err2 == nil {
				vec, err = v3.Vec{X: v2v.X, Y: v2v.Y}, nil
			}
		}
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("at: %w", err)
		}
		td.Translation = &vec
	}
	if v, ok := pa.kw["rot"]; ok {
		rot, err := toRotation(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rot: %w", err)
		}
		td.Rotation = &rot
	}
	if td.Translation != nil || td.Rotation != nil {
		ref = b.add(graph.NodeTransform, "move", td, ref.id)
	}
	if v, ok := pa.kw["name"]; ok {
		name, err := toString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("name: %w", err)
		}
		if err := b.rename(ref, name); err != nil {
			return zygo.SexpNull, err
		}
	}
	return ref, nil
}

// ---------------------------------------------------------------------------
// Shape tables
// ---------------------------------------------------------------------------

var (
	unitX = v3.Vec{X: 1}
	unitY = v3.Vec{Y: 1}
)

// shapes3 maps DSL names (after kebab conversion) to 3D constructors.
var shapes3 = map[string]func(pa kwArgs) (primitive.Shape3, error){
	"sphere": func(pa kwArgs) (primitive.Shape3, error) {
		r, err := pa.float("r", 1)
		return primitive.NewSphere(r), err
	},
	"plane": func(pa kwArgs) (primitive.Shape3, error) {
		n, err := pa.vec3("n", unitY)
		return primitive.NewPlane3(n), err
	},
	"torus": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		r := e.float(pa, "r", 1)
		t := e.float(pa, "thickness", 0.25)
		n := e.vec3(pa, "n", unitY)
		return primitive.NewTorus(r, t, n), e.err
	},
	"disk": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		r := e.float(pa, "r", 1)
		t := e.float(pa, "thickness", 0.1)
		n := e.vec3(pa, "n", unitY)
		return primitive.NewDisk(r, t, n), e.err
	},
	"segment": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		a := e.vec3(pa, "a", v3.Vec{})
		b := e.vec3(pa, "b", unitX)
		return primitive.NewSegment(a, b), e.err
	},
	"capsule": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		a := e.vec3(pa, "a", v3.Vec{})
		b := e.vec3(pa, "b", unitX)
		r := e.float(pa, "r", 0.25)
		return primitive.NewCapsule(a, b, r), e.err
	},
	"cylinder": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		a := e.vec3(pa, "a", v3.Vec{Y: -0.5})
		b := e.vec3(pa, "b", v3.Vec{Y: 0.5})
		r := e.float(pa, "r", 0.5)
		return primitive.NewCylinder(a, b, r), e.err
	},
	"cuboid": func(pa kwArgs) (primitive.Shape3, error) {
		half, err := pa.vec3("size", v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
		return primitive.NewCuboid(half), err
	},
	"cuboid_frame": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		half := e.vec3(pa, "size", v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
		edge := e.vec3(pa, "edge", v3.Vec{X: 0.05, Y: 0.05, Z: 0.05})
		return primitive.NewCuboidFrame(half, edge), e.err
	},
	"cuboid_frame_radial": func(pa kwArgs) (primitive.Shape3, error) {
		var e errs
		half := e.vec3(pa, "size", v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
		r := e.float(pa, "r", 0.05)
		return primitive.NewCuboidFrameRadial(half, r), e.err
	},
}

// shapes2 maps DSL names (after kebab conversion) to 2D kinds. Their
// parameters default to the kind's simple-scene defaults.
var shapes2 = map[string]primitive.Kind{
	"circle":               primitive.KindCircle,
	"rectangle":            primitive.KindRectangle,
	"equilateral_triangle": primitive.KindEquilateralTriangle,
	"isosceles_triangle":   primitive.KindIsoscelesTriangle,
	"triangle":             primitive.KindTriangle,
	"capsule2d":            primitive.KindCapsule2,
	"annulus":              primitive.KindAnnulus,
	"line2d":               primitive.KindLine,
	"half_plane":           primitive.KindHalfPlane,
	"segment2d":            primitive.KindLineSegment,
	"half_plane_segment":   primitive.KindHalfPlaneSegment,
	"ray2d":                primitive.KindRay,
	"half_plane_ray":       primitive.KindHalfPlaneRay,
	"sierpinski":           primitive.KindSierpinski,
	"koch":                 primitive.KindKoch,
}

// shape2 reads the keywords of a 2D kind:
//
//	:r :thickness    first and second dimension
//	:size            both dimensions as a vec2
//	:a :b :c         control points
//	:n               normal of line2d and half-plane
//	:dir             direction of rays
//	:depth           fractal refinement
func shape2(k primitive.Kind, pa kwArgs) (primitive.Shape2, error) {
	var e errs
	p := k.DefaultParams()
	size := e.vec2(pa, "size", v2.Vec{X: p.Dim1, Y: p.Dim2})
	p.Dim1 = e.float(pa, "r", size.X)
	p.Dim2 = e.float(pa, "thickness", size.Y)
	for i, name := range []string{"a", "b", "c"} {
		p.Points[i] = e.vec2(pa, name, p.Points[i])
	}
	if e.err != nil {
		return primitive.Shape2{}, e.err
	}

	switch k {
	case primitive.KindLine, primitive.KindHalfPlane:
		n := e.vec2(pa, "n", v2.Vec{Y: 1})
		if k == primitive.KindLine {
			return primitive.NewLine2(n), e.err
		}
		return primitive.NewHalfPlane(n), e.err
	case primitive.KindRay, primitive.KindHalfPlaneRay:
		dir := e.vec2(pa, "dir", v2.Vec{X: 1})
		if k == primitive.KindRay {
			return primitive.NewRay2(p.Points[0], dir), e.err
		}
		return primitive.NewHalfPlaneRay(p.Points[0], dir), e.err
	case primitive.KindSierpinski, primitive.KindKoch:
		depth, err := pa.depth("depth", 4)
		if err != nil {
			return primitive.Shape2{}, err
		}
		if k == primitive.KindSierpinski {
			return primitive.NewSierpinski(p.Dim1, depth), nil
		}
		return primitive.NewKoch(p.Dim1, depth), nil
	}
	return k.Shape(p), nil
}

// errs accumulates the first keyword error so constructors stay linear.
type errs struct{ err error }

func (e *errs) float(pa kwArgs, name string, def float64) float64 {
	v, err := pa.float(name, def)
	if e.err == nil {
		e.err = err
	}
	return v
}

func (e *errs) vec3(pa kwArgs, name string, def v3.Vec) v3.Vec {
	v, err := pa.vec3(name, def)
	if e.err == nil {
		e.err = err
	}
	return v
}

func (e *errs) vec2(pa kwArgs, name string, def v2.Vec) v2.Vec {
	v, err := pa.vec2(name, def)
	if e.err == nil {
		e.err = err
	}
	return v
}

// dslName converts a registered name back to the spelling users write.
func dslName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// DefaultOnion is the shell thickness of (onion shape) without :thickness.
const DefaultOnion = 0.05

// ShapeNames returns the DSL names of the 3D and 2D shape builtins, each
// sorted.
func ShapeNames() (shapes3D, shapes2D []string) {
	for name := range shapes3 {
		shapes3D = append(shapes3D, dslName(name))
	}
	for name := range shapes2 {
		shapes2D = append(shapes2D, dslName(name))
	}
	sort.Strings(shapes3D)
	sort.Strings(shapes2D)
	return shapes3D, shapes2D
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins populate b's graph during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (sphere :r 1 :at (vec3 0 1 0) :rot (vec3 0 45 0) :name "ball") etc.
	// -----------------------------------------------------------------------
	for name, build := range shapes3 {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			s, err := build(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName(name), err)
			}
			ref, err := b.finish(b.add(graph.NodeShape, name, graph.Shape3Data{Shape: s}), pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName(name), err)
			}
			return ref, nil
		})
	}

	// -----------------------------------------------------------------------
	// (circle :r 0.5) (rectangle :size (vec2 1 0.5)) (koch :r 1 :depth 3) etc.
	// -----------------------------------------------------------------------
	for name, kind := range shapes2 {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			s, err := shape2(kind, pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName(name), err)
			}
			ref, err := b.finish(b.add(graph.NodeShape, name, graph.Shape2Data{Shape: s}), pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName(name), err)
			}
			return ref, nil
		})
	}

	// -----------------------------------------------------------------------
	// (union a b ...) (intersection a b ...) (difference base cutter ...) (xor a b)
	// -----------------------------------------------------------------------
	for _, op := range csg.Ops {
		name := op.String()
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 shapes, got %d", name, len(pa.positional))
			}
			children := make([]graph.NodeID, len(pa.positional))
			for i, arg := range pa.positional {
				id, err := toNodeRef(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", name, i+1, err)
				}
				children[i] = id
			}
			ref, err := b.finish(b.add(graph.NodeOperator, name, graph.OperatorData{Op: op}, children...), pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return ref, nil
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3) (vec2 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		f, err := toNumbers(&zygo.SexpArray{Val: args}, 3)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v3.Vec{X: f[0], Y: f[1], Z: f[2]}}, nil
	})
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		f, err := toNumbers(&zygo.SexpArray{Val: args}, 2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: f[0], Y: f[1]}}, nil
	})

	// -----------------------------------------------------------------------
	// (move shape :at (vec3 0 0 1) :rot (vec3 0 0 90))
	// (rotate shape (vec3 0 0 90))   (rotate shape 45)
	// -----------------------------------------------------------------------
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("move requires exactly one shape")
		}
		id, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		if _, ok := pa.kw["at"]; !ok {
			if _, ok := pa.kw["rot"]; !ok {
				return zygo.SexpNull, fmt.Errorf("move requires :at or :rot")
			}
		}
		ref, err := b.finish(&sexpNodeRef{id: id}, pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		return ref, nil
	})
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a shape and an angle")
		}
		id, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		rot, err := toRotation(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		ref, err := b.finish(b.add(graph.NodeTransform, "rotate", graph.TransformData{Rotation: &rot}, id), pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (onion shape :thickness 0.05)
	// -----------------------------------------------------------------------
	env.AddFunction("onion", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("onion requires exactly one shape")
		}
		id, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("onion: %w", err)
		}
		t, err := pa.float("thickness", DefaultOnion)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("onion: %w", err)
		}
		if !(t > 0) {
			return zygo.SexpNull, fmt.Errorf("onion: thickness must be positive, got %g", t)
		}
		ref, err := b.finish(b.add(graph.NodeShell, "onion", graph.ShellData{Thickness: t}, id), pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("onion: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n := b.g.Lookup(shapeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpNodeRef{id: n.ID, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (scene "name" shape ...) or (scene shape ...)
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var sceneName string
		if len(args) > 0 {
			if s, ok := args[0].(*zygo.SexpStr); ok && !strings.HasPrefix(s.S, kwPrefix) {
				sceneName = s.S
				args = args[1:]
			}
		}
		var children []graph.NodeID
		for i, arg := range args {
			id, err := toNodeRef(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: child %d: %w", i+1, err)
			}
			children = append(children, id)
		}
		ref := b.add(graph.NodeGroup, "scene", graph.GroupData{Description: sceneName}, children...)
		if sceneName != "" {
			if err := b.rename(ref, sceneName); err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: %w", err)
			}
		}
		b.g.AddRoot(ref.id)
		return ref, nil
	})
}
