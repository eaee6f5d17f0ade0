package primitive

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind3 enumerates the 3D primitive shapes.
type Kind3 uint8

const (
	KindPlane Kind3 = iota
	KindSphere
	KindTorus
	KindDisk
	KindSegment
	KindCapsule
	KindCylinder
	KindCuboid
	KindCuboidFrame
	KindCuboidFrameRadial
)

var kind3Names = [...]string{
	KindPlane:             "plane",
	KindSphere:            "sphere",
	KindTorus:             "torus",
	KindDisk:              "disk",
	KindSegment:           "segment",
	KindCapsule:           "capsule",
	KindCylinder:          "cylinder",
	KindCuboid:            "cuboid",
	KindCuboidFrame:       "cuboid-frame",
	KindCuboidFrameRadial: "cuboid-frame-radial",
}

func (k Kind3) String() string {
	if int(k) < len(kind3Names) {
		return kind3Names[k]
	}
	return fmt.Sprintf("Kind3(%d)", uint8(k))
}

// Shape3 is a 3D primitive together with its parameters. The meaning of
// A, B and R depends on Kind:
//
//	plane                n = A
//	sphere               r = R.X
//	torus, disk          n = A, radii = R
//	segment              endpoints A, B
//	capsule, cylinder    endpoints A, B, r = R.X
//	cuboid               half extents A
//	cuboid-frame         half extents A, edge size B
//	cuboid-frame-radial  half extents A, edge radius R.X
//
// Use the constructors rather than filling the fields by hand.
type Shape3 struct {
	Kind Kind3
	A, B v3.Vec
	R    v2.Vec
}

// NewPlane3 returns the half-space below the plane with normal n. n is
// normalized.
func NewPlane3(n v3.Vec) Shape3 {
	return Shape3{Kind: KindPlane, A: n.Normalize()}
}

func NewSphere(r float64) Shape3 {
	return Shape3{Kind: KindSphere, R: v2.Vec{X: r}}
}

// NewTorus returns a torus of major radius major and tube radius minor lying
// in the plane orthogonal to n.
func NewTorus(major, minor float64, n v3.Vec) Shape3 {
	return Shape3{Kind: KindTorus, A: n.Normalize(), R: v2.Vec{X: major, Y: minor}}
}

// NewDisk returns a disk of radius radius whose rim is rounded by thickness.
func NewDisk(radius, thickness float64, n v3.Vec) Shape3 {
	return Shape3{Kind: KindDisk, A: n.Normalize(), R: v2.Vec{X: radius, Y: thickness}}
}

func NewSegment(a, b v3.Vec) Shape3 {
	return Shape3{Kind: KindSegment, A: a, B: b}
}

func NewCapsule(a, b v3.Vec, r float64) Shape3 {
	return Shape3{Kind: KindCapsule, A: a, B: b, R: v2.Vec{X: r}}
}

func NewCylinder(a, b v3.Vec, r float64) Shape3 {
	return Shape3{Kind: KindCylinder, A: a, B: b, R: v2.Vec{X: r}}
}

func NewCuboid(half v3.Vec) Shape3 {
	return Shape3{Kind: KindCuboid, A: half}
}

func NewCuboidFrame(half, edge v3.Vec) Shape3 {
	return Shape3{Kind: KindCuboidFrame, A: half, B: edge}
}

func NewCuboidFrameRadial(half v3.Vec, r float64) Shape3 {
	return Shape3{Kind: KindCuboidFrameRadial, A: half, R: v2.Vec{X: r}}
}

// Distance evaluates the shape at p, given in the shape's local frame.
func (s Shape3) Distance(p v3.Vec) float64 {
	switch s.Kind {
	case KindPlane:
		return Plane(p, s.A)
	case KindSphere:
		return Sphere(p, s.R.X)
	case KindTorus:
		return Torus(p, s.R, s.A)
	case KindDisk:
		return Disk(p, s.R, s.A)
	case KindSegment:
		return LineSegment(p, s.A, s.B)
	case KindCapsule:
		return Capsule(p, s.A, s.B, s.R.X)
	case KindCylinder:
		return Cylinder(p, s.A, s.B, s.R.X)
	case KindCuboid:
		return Cuboid(p, s.A)
	case KindCuboidFrame:
		return CuboidFrame(p, s.A, s.B)
	case KindCuboidFrameRadial:
		return CuboidFrameRadial(p, s.A, s.R.X)
	}
	panic(fmt.Sprintf("primitive: invalid 3D shape kind %d", uint8(s.Kind)))
}

// Bounds returns the local-frame bounding box of the shape. ok is false for
// unbounded shapes (planes).
func (s Shape3) Bounds() (lo, hi v3.Vec, ok bool) {
	cube := func(r float64) (v3.Vec, v3.Vec, bool) {
		r = math.Abs(r)
		return v3.Vec{X: -r, Y: -r, Z: -r}, v3.Vec{X: r, Y: r, Z: r}, true
	}
	segment := func(r float64) (v3.Vec, v3.Vec, bool) {
		r = math.Abs(r)
		pad := v3.Vec{X: r, Y: r, Z: r}
		return s.A.Min(s.B).Sub(pad), s.A.Max(s.B).Add(pad), true
	}
	switch s.Kind {
	case KindPlane:
		return v3.Vec{}, v3.Vec{}, false
	case KindSphere:
		return cube(s.R.X)
	case KindTorus:
		return cube(math.Abs(s.R.X) + math.Abs(s.R.Y))
	case KindDisk:
		return cube(math.Abs(s.R.X) + math.Abs(s.R.Y))
	case KindSegment:
		return segment(0)
	case KindCapsule, KindCylinder:
		return segment(s.R.X)
	case KindCuboid:
		h := s.A.Abs()
		return h.MulScalar(-1), h, true
	case KindCuboidFrame:
		h := s.A.Abs().Add(s.B.Abs().MulScalar(0.5))
		return h.MulScalar(-1), h, true
	case KindCuboidFrameRadial:
		r := math.Abs(s.R.X)
		h := s.A.Abs().Add(v3.Vec{X: r, Y: r, Z: r})
		return h.MulScalar(-1), h, true
	}
	panic(fmt.Sprintf("primitive: invalid 3D shape kind %d", uint8(s.Kind)))
}
