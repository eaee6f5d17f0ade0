package primitive

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Kind enumerates the 2D primitive shapes. The first NumSceneKinds values
// are the shapes selectable by index in a simple scene, in their fixed
// order; the fractal kinds follow.
type Kind uint32

const (
	KindCircle Kind = iota
	KindRectangle
	KindEquilateralTriangle
	KindIsoscelesTriangle
	KindTriangle
	KindCapsule2
	KindAnnulus
	KindLine
	KindHalfPlane
	KindLineSegment
	KindHalfPlaneSegment
	KindRay
	KindHalfPlaneRay

	KindSierpinski
	KindKoch
)

// NumSceneKinds is the number of kinds addressable by KindFromIndex.
const NumSceneKinds = int(KindHalfPlaneRay) + 1

var kindNames = [...]string{
	KindCircle:              "circle",
	KindRectangle:           "rectangle",
	KindEquilateralTriangle: "equilateral-triangle",
	KindIsoscelesTriangle:   "isosceles-triangle",
	KindTriangle:            "triangle",
	KindCapsule2:            "capsule",
	KindAnnulus:             "torus",
	KindLine:                "line",
	KindHalfPlane:           "plane",
	KindLineSegment:         "line-segment",
	KindHalfPlaneSegment:    "plane-segment",
	KindRay:                 "ray",
	KindHalfPlaneRay:        "plane-ray",
	KindSierpinski:          "sierpinski",
	KindKoch:                "koch",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// Kinds returns the simple-scene kinds in index order.
func Kinds() []Kind {
	ks := make([]Kind, NumSceneKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// KindFromIndex maps a raw index to a simple-scene kind. Out of range
// indices select KindCircle.
func KindFromIndex(i uint32) Kind {
	if i >= uint32(NumSceneKinds) {
		return KindCircle
	}
	return Kind(i)
}

// ShapeSpec describes which Params fields a kind consumes.
type ShapeSpec struct {
	NumDims   int
	NumPoints int
	// IsRadial marks kinds whose first dimension is a radius.
	IsRadial bool
}

var kindSpecs = [...]ShapeSpec{
	KindCircle:              {NumDims: 1, IsRadial: true},
	KindRectangle:           {NumDims: 2},
	KindEquilateralTriangle: {NumDims: 1, IsRadial: true},
	KindIsoscelesTriangle:   {NumDims: 2},
	KindTriangle:            {NumPoints: 3},
	KindCapsule2:            {NumDims: 1, NumPoints: 2, IsRadial: true},
	KindAnnulus:             {NumDims: 2, IsRadial: true},
	KindLine:                {},
	KindHalfPlane:           {},
	KindLineSegment:         {NumPoints: 2},
	KindHalfPlaneSegment:    {NumPoints: 2},
	KindRay:                 {NumPoints: 1},
	KindHalfPlaneRay:        {NumPoints: 1},
	KindSierpinski:          {NumDims: 1, IsRadial: true},
	KindKoch:                {NumDims: 1, IsRadial: true},
}

// Spec returns the parameter layout of k.
func (k Kind) Spec() ShapeSpec {
	if int(k) < len(kindSpecs) {
		return kindSpecs[k]
	}
	return kindSpecs[KindCircle]
}

// Params is the flat parameter block of a simple scene.
type Params struct {
	Dim1, Dim2 float64
	Points     [3]v2.Vec
}

// DefaultParams returns the starting parameters for k.
func (k Kind) DefaultParams() Params {
	p := Params{
		Dim1:   0.5,
		Dim2:   0.2,
		Points: [3]v2.Vec{{X: 0, Y: 0}, {X: 0.2, Y: 0.2}, {X: -0.4, Y: 0.35}},
	}
	if k.Spec().IsRadial {
		p.Dim1, p.Dim2 = 0.2, 0.05
	}
	return p
}

// fractalDepth is the refinement level used when a fractal kind is built
// from Params.
const fractalDepth = 4

// Shape builds the shape of kind k from p. Line and half-plane kinds use
// the +Y normal; ray kinds point along +X.
func (k Kind) Shape(p Params) Shape2 {
	dims := v2.Vec{X: p.Dim1, Y: p.Dim2}
	a, b, c := p.Points[0], p.Points[1], p.Points[2]
	switch k {
	case KindCircle:
		return NewCircle(p.Dim1)
	case KindRectangle:
		return NewRectangle(dims)
	case KindEquilateralTriangle:
		return NewEquilateralTriangle(p.Dim1)
	case KindIsoscelesTriangle:
		return NewIsoscelesTriangle(dims)
	case KindTriangle:
		return NewTriangle(a, b, c)
	case KindCapsule2:
		return NewCapsule2(a, b, p.Dim1)
	case KindAnnulus:
		return NewAnnulus(p.Dim1, p.Dim2)
	case KindLine:
		return NewLine2(v2.Vec{Y: 1})
	case KindHalfPlane:
		return NewHalfPlane(v2.Vec{Y: 1})
	case KindLineSegment:
		return NewSegment2(a, b)
	case KindHalfPlaneSegment:
		return NewHalfPlaneSegment(a, b)
	case KindRay:
		return NewRay2(a, v2.Vec{X: 1})
	case KindHalfPlaneRay:
		return NewHalfPlaneRay(a, v2.Vec{X: 1})
	case KindSierpinski:
		return NewSierpinski(p.Dim1, fractalDepth)
	case KindKoch:
		return NewKoch(p.Dim1, fractalDepth)
	}
	return NewCircle(p.Dim1)
}

// Shape2 is a 2D primitive together with its parameters. Dims holds the
// scalar dimensions, P the control points, N the unit normal or direction
// and Depth the fractal refinement level.
type Shape2 struct {
	Kind  Kind
	Dims  v2.Vec
	P     [3]v2.Vec
	N     v2.Vec
	Depth uint
}

func NewCircle(r float64) Shape2 {
	return Shape2{Kind: KindCircle, Dims: v2.Vec{X: r}}
}

func NewRectangle(half v2.Vec) Shape2 {
	return Shape2{Kind: KindRectangle, Dims: half}
}

func NewEquilateralTriangle(r float64) Shape2 {
	return Shape2{Kind: KindEquilateralTriangle, Dims: v2.Vec{X: r}}
}

// NewIsoscelesTriangle takes the base half-width in q.X and the height in
// q.Y.
func NewIsoscelesTriangle(q v2.Vec) Shape2 {
	return Shape2{Kind: KindIsoscelesTriangle, Dims: q}
}

func NewTriangle(a, b, c v2.Vec) Shape2 {
	return Shape2{Kind: KindTriangle, P: [3]v2.Vec{a, b, c}}
}

func NewCapsule2(a, b v2.Vec, r float64) Shape2 {
	return Shape2{Kind: KindCapsule2, P: [3]v2.Vec{a, b}, Dims: v2.Vec{X: r}}
}

func NewAnnulus(r, thickness float64) Shape2 {
	return Shape2{Kind: KindAnnulus, Dims: v2.Vec{X: r, Y: thickness}}
}

func NewLine2(n v2.Vec) Shape2 {
	return Shape2{Kind: KindLine, N: n.Normalize()}
}

func NewHalfPlane(n v2.Vec) Shape2 {
	return Shape2{Kind: KindHalfPlane, N: n.Normalize()}
}

func NewSegment2(a, b v2.Vec) Shape2 {
	return Shape2{Kind: KindLineSegment, P: [3]v2.Vec{a, b}}
}

func NewHalfPlaneSegment(a, b v2.Vec) Shape2 {
	return Shape2{Kind: KindHalfPlaneSegment, P: [3]v2.Vec{a, b}}
}

func NewRay2(a, dir v2.Vec) Shape2 {
	return Shape2{Kind: KindRay, P: [3]v2.Vec{a}, N: dir.Normalize()}
}

func NewHalfPlaneRay(a, dir v2.Vec) Shape2 {
	return Shape2{Kind: KindHalfPlaneRay, P: [3]v2.Vec{a}, N: dir.Normalize()}
}

func NewSierpinski(r float64, depth uint) Shape2 {
	return Shape2{Kind: KindSierpinski, Dims: v2.Vec{X: r}, Depth: depth}
}

func NewKoch(r float64, n uint) Shape2 {
	return Shape2{Kind: KindKoch, Dims: v2.Vec{X: r}, Depth: n}
}

// Distance evaluates the shape at p, given in the shape's local frame.
func (s Shape2) Distance(p v2.Vec) float64 {
	switch s.Kind {
	case KindCircle:
		return Circle(p, s.Dims.X)
	case KindRectangle:
		return Rectangle(p, s.Dims)
	case KindEquilateralTriangle:
		return EquilateralTriangle(p, s.Dims.X)
	case KindIsoscelesTriangle:
		return IsoscelesTriangle(p, s.Dims)
	case KindTriangle:
		return Triangle(p, s.P[0], s.P[1], s.P[2])
	case KindCapsule2:
		return Capsule2(p, s.P[0], s.P[1], s.Dims.X)
	case KindAnnulus:
		return Annulus(p, s.Dims.X, s.Dims.Y)
	case KindLine:
		return Line2(p, s.N)
	case KindHalfPlane:
		return HalfPlane(p, s.N)
	case KindLineSegment:
		return Segment2(p, s.P[0], s.P[1])
	case KindHalfPlaneSegment:
		return HalfPlaneSegment(p, s.P[0], s.P[1])
	case KindRay:
		return Ray2(p, s.P[0], s.N)
	case KindHalfPlaneRay:
		return HalfPlaneRay(p, s.P[0], s.N)
	case KindSierpinski:
		return Sierpinski(p, s.Dims.X, s.Depth)
	case KindKoch:
		return Koch(p, s.Dims.X, s.Depth)
	}
	panic(fmt.Sprintf("primitive: invalid 2D shape kind %d", uint32(s.Kind)))
}

// Bounds returns the local-frame bounding box of the shape. ok is false for
// lines, half-planes and rays.
func (s Shape2) Bounds() (lo, hi v2.Vec, ok bool) {
	square := func(r float64) (v2.Vec, v2.Vec, bool) {
		r = math.Abs(r)
		return v2.Vec{X: -r, Y: -r}, v2.Vec{X: r, Y: r}, true
	}
	points := func(pad float64, ps ...v2.Vec) (v2.Vec, v2.Vec, bool) {
		lo, hi := ps[0], ps[0]
		for _, q := range ps[1:] {
			lo, hi = lo.Min(q), hi.Max(q)
		}
		r := v2.Vec{X: math.Abs(pad), Y: math.Abs(pad)}
		return lo.Sub(r), hi.Add(r), true
	}
	switch s.Kind {
	case KindCircle:
		return square(s.Dims.X)
	case KindRectangle:
		h := s.Dims.Abs()
		return h.MulScalar(-1), h, true
	case KindEquilateralTriangle, KindSierpinski, KindKoch:
		return square(2 * s.Dims.X)
	case KindIsoscelesTriangle:
		return points(0, v2.Vec{}, v2.Vec{X: -s.Dims.X, Y: s.Dims.Y}, s.Dims)
	case KindTriangle:
		return points(0, s.P[0], s.P[1], s.P[2])
	case KindCapsule2:
		return points(s.Dims.X, s.P[0], s.P[1])
	case KindAnnulus:
		return square(math.Abs(s.Dims.X) + math.Abs(s.Dims.Y))
	case KindLineSegment, KindHalfPlaneSegment:
		return points(0, s.P[0], s.P[1])
	case KindLine, KindHalfPlane, KindRay, KindHalfPlaneRay:
		return v2.Vec{}, v2.Vec{}, false
	}
	panic(fmt.Sprintf("primitive: invalid 2D shape kind %d", uint32(s.Kind)))
}
