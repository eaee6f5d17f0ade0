package primitive

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is the half-space below the plane through the origin with unit
// normal n.
func Plane(p, n v3.Vec) float64 {
	return p.Dot(n)
}

// Sphere is a ball of radius r centered at the origin.
func Sphere(p v3.Vec, r float64) float64 {
	return p.Length() - r
}

// Torus lies in the plane orthogonal to the unit vector n. r.X is the major
// radius, r.Y the tube radius.
func Torus(p v3.Vec, r v2.Vec, n v3.Vec) float64 {
	q := v2.Vec{X: p.Cross(n).Length() - r.X, Y: p.Dot(n)}
	return q.Length() - r.Y
}

// Disk is a flat disk of radius r.X in the plane orthogonal to the unit
// vector n, with its rim rounded by r.Y.
func Disk(p v3.Vec, r v2.Vec, n v3.Vec) float64 {
	q := v2.Vec{X: p.Cross(n).Length() - r.X, Y: math.Abs(p.Dot(n))}
	return q.Max(v2.Vec{}).Length() - r.Y
}

// LineSegment is the unsigned distance to the segment ab.
func LineSegment(p, a, b v3.Vec) float64 {
	closest := a.Add(projectOntoSegment3(p.Sub(a), b.Sub(a)))
	return p.Sub(closest).Length()
}

// Capsule is the segment ab inflated by r.
func Capsule(p, a, b v3.Vec, r float64) float64 {
	return LineSegment(p, a, b) - r
}

// Cylinder has its axis from a to b and radius r, with flat caps.
func Cylinder(p, a, b v3.Vec, r float64) float64 {
	ab := b.Sub(a)
	l2 := math.Max(ab.Dot(ab), minLength2)
	t := p.Sub(a).Dot(ab) / l2
	q := v2.Vec{
		X: p.Sub(a.Add(ab.MulScalar(t))).Length() - r,
		Y: (math.Abs(t-0.5) - 0.5) * math.Sqrt(l2),
	}
	return boxBound2(q)
}

// Cuboid is an axis-aligned box with the given half extents.
func Cuboid(p, half v3.Vec) float64 {
	return boxBound3(p.Abs().Sub(half))
}

// CuboidFrame is the edge frame of a box with half extents half, each edge
// a square bar of full cross-section edge.
func CuboidFrame(p, half, edge v3.Vec) float64 {
	e := edge.MulScalar(0.5)
	p = p.Abs().Sub(half).Sub(e)
	q := p.Add(e).Abs().Sub(e)
	return math.Min(
		boxBound3(v3.Vec{X: p.X, Y: q.Y, Z: q.Z}),
		math.Min(
			boxBound3(v3.Vec{X: q.X, Y: p.Y, Z: q.Z}),
			boxBound3(v3.Vec{X: q.X, Y: q.Y, Z: p.Z}),
		),
	)
}

// CuboidFrameRadial is the edge frame of a box with half extents half, each
// edge a round bar of radius r centered on the box edge.
func CuboidFrameRadial(p, half v3.Vec, r float64) float64 {
	v := p.Abs().Sub(half)
	a := v3.Vec{X: v.X, Y: v.Y, Z: math.Max(v.Z, 0)}
	b := v3.Vec{X: v.X, Y: math.Max(v.Y, 0), Z: v.Z}
	c := v3.Vec{X: math.Max(v.X, 0), Y: v.Y, Z: v.Z}
	return math.Min(a.Length(), math.Min(b.Length(), c.Length())) - r
}
