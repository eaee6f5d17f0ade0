package march

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Field is a 3D signed distance field. sdfx's sdf.SDF3 and the programs in
// package program satisfy it.
type Field interface {
	Evaluate(p v3.Vec) float64
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(p v3.Vec) float64

func (f FieldFunc) Evaluate(p v3.Vec) float64 { return f(p) }

// Status is the terminal state of a traced ray.
type Status uint8

const (
	Hit             Status = iota // a step fell below SurfDist
	Divergent                     // accumulated distance passed MaxDist
	BudgetExhausted               // MaxSteps ran out first
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Divergent:
		return "divergent"
	case BudgetExhausted:
		return "budget-exhausted"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Surface says which field produced a hit.
type Surface uint8

const (
	SurfaceNone Surface = iota
	SurfaceShape
	SurfaceProbe
)

func (s Surface) String() string {
	switch s {
	case SurfaceNone:
		return "none"
	case SurfaceShape:
		return "shape"
	case SurfaceProbe:
		return "probe"
	default:
		return fmt.Sprintf("Surface(%d)", uint8(s))
	}
}

// Result describes one traced ray. Point and Normal are set only for hits.
type Result struct {
	Status   Status
	Distance float64 // accumulated distance along the ray
	Steps    int
	Point    v3.Vec
	Normal   v3.Vec
	Surface  Surface
}

// Hit reports whether the ray reached a surface.
func (r Result) Hit() bool { return r.Status == Hit }

// stepFunc returns the safe step at p and the surface it belongs to.
type stepFunc func(p v3.Vec) (float64, Surface)

// trace is the bounded sphere-tracing loop shared by every variant. rd must
// be unit length.
func trace(ro, rd v3.Vec, step stepFunc, cfg Config) Result {
	t := 0.0
	for i := 0; i < cfg.MaxSteps; i++ {
		p := ro.Add(rd.MulScalar(t))
		d, surf := step(p)
		t += d
		if d < cfg.SurfDist {
			return Result{Status: Hit, Distance: t, Steps: i + 1, Point: ro.Add(rd.MulScalar(t)), Surface: surf}
		}
		if t > cfg.MaxDist {
			return Result{Status: Divergent, Distance: t, Steps: i + 1}
		}
	}
	return Result{Status: BudgetExhausted, Distance: t, Steps: cfg.MaxSteps}
}

// March sphere-traces f from ro along the unit direction rd.
func March(ro, rd v3.Vec, f Field, cfg Config) Result {
	r := trace(ro, rd, func(p v3.Vec) (float64, Surface) {
		return f.Evaluate(p), SurfaceShape
	}, cfg)
	if r.Hit() {
		r.Normal = Normal(f, r.Point, cfg.NormalEps)
	}
	return r
}

// Normal estimates the unit surface normal of f at p by forward
// differences. It returns the zero vector where the gradient vanishes.
func Normal(f Field, p v3.Vec, eps float64) v3.Vec {
	d := f.Evaluate(p)
	n := v3.Vec{
		X: f.Evaluate(v3.Vec{X: p.X + eps, Y: p.Y, Z: p.Z}) - d,
		Y: f.Evaluate(v3.Vec{X: p.X, Y: p.Y + eps, Z: p.Z}) - d,
		Z: f.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z + eps}) - d,
	}
	l := n.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{}
	}
	return n.MulScalar(1 / l)
}
