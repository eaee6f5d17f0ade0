package primitive

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

const sqrt3 = 1.7320508075688772

// Circle is a disk of radius r centered at the origin.
func Circle(p v2.Vec, r float64) float64 {
	return p.Length() - r
}

// Rectangle is an axis-aligned rectangle with half extents half.
func Rectangle(p, half v2.Vec) float64 {
	return boxBound2(p.Abs().Sub(half))
}

// EquilateralTriangle has its centroid at the origin, one vertex pointing
// up, and base half-width r.
func EquilateralTriangle(p v2.Vec, r float64) float64 {
	p.X = math.Abs(p.X) - r
	p.Y += r / sqrt3
	if p.X+sqrt3*p.Y > 0 {
		p = v2.Vec{X: p.X - sqrt3*p.Y, Y: -sqrt3*p.X - p.Y}.MulScalar(0.5)
	}
	p.X -= clamp(p.X, -2*r, 0)
	return -p.Length() * sign(p.Y)
}

// IsoscelesTriangle has its apex at the origin and its base centered at
// (0, q.Y) with half-width q.X.
func IsoscelesTriangle(p, q v2.Vec) float64 {
	p.X = math.Abs(p.X)
	l2 := math.Max(q.Dot(q), minLength2)
	a := p.Sub(q.MulScalar(saturate(p.Dot(q) / l2)))
	qx := q.X
	if math.Abs(qx) < minLength2 {
		qx = minLength2
	}
	b := p.Sub(v2.Vec{X: q.X * saturate(p.X/qx), Y: q.Y})
	s := -sign(q.Y)
	dx := math.Min(a.Dot(a), b.Dot(b))
	dy := math.Min(s*(p.X*q.Y-p.Y*q.X), s*(p.Y-q.Y))
	return -math.Sqrt(dx) * sign(dy)
}

// Triangle is the general triangle with vertices p0, p1, p2 in either
// winding order.
func Triangle(p, p0, p1, p2 v2.Vec) float64 {
	e0, e1, e2 := p1.Sub(p0), p2.Sub(p1), p0.Sub(p2)
	v0, v1, v2_ := p.Sub(p0), p.Sub(p1), p.Sub(p2)
	pq0 := v0.Sub(projectOntoSegment2(v0, e0))
	pq1 := v1.Sub(projectOntoSegment2(v1, e1))
	pq2 := v2_.Sub(projectOntoSegment2(v2_, e2))
	s := sign(cross2(e0, e2))
	if s == 0 {
		s = 1
	}
	dx := math.Min(pq0.Dot(pq0), math.Min(pq1.Dot(pq1), pq2.Dot(pq2)))
	dy := math.Min(s*cross2(v0, e0), math.Min(s*cross2(v1, e1), s*cross2(v2_, e2)))
	return -math.Sqrt(dx) * sign(dy)
}

// Segment2 is the unsigned distance to the segment ab.
func Segment2(p, a, b v2.Vec) float64 {
	closest := a.Add(projectOntoSegment2(p.Sub(a), b.Sub(a)))
	return p.Sub(closest).Length()
}

// Capsule2 is the segment ab inflated by r.
func Capsule2(p, a, b v2.Vec, r float64) float64 {
	return Segment2(p, a, b) - r
}

// CapsuleX is a capsule along the x axis from -width to width.
func CapsuleX(p v2.Vec, width, r float64) float64 {
	p.X = math.Abs(p.X)
	p.X -= math.Min(p.X, width)
	return p.Length() - r
}

// Annulus is a ring of center radius r and half-thickness thickness.
func Annulus(p v2.Vec, r, thickness float64) float64 {
	return math.Abs(p.Length()-r) - thickness
}

// Line2 is the unsigned distance to the line through the origin orthogonal
// to the unit vector n.
func Line2(p, n v2.Vec) float64 {
	return math.Abs(p.Dot(n))
}

// HalfPlane is the region below the line through the origin with unit
// normal n.
func HalfPlane(p, n v2.Vec) float64 {
	return p.Dot(n)
}

// HalfPlaneSegment is the distance to the segment ab, negative on the right
// of the directed line a→b.
func HalfPlaneSegment(p, a, b v2.Vec) float64 {
	d := Segment2(p, a, b)
	return d * signum(cross2(b.Sub(a), p.Sub(a)))
}

// Ray2 is the unsigned distance to the ray starting at a with unit
// direction dir.
func Ray2(p, a, dir v2.Vec) float64 {
	v := p.Sub(a)
	t := math.Max(v.Dot(dir), 0)
	return v.Sub(dir.MulScalar(t)).Length()
}

// HalfPlaneRay is the distance to the ray starting at a with unit direction
// dir, negative on the right of the ray.
func HalfPlaneRay(p, a, dir v2.Vec) float64 {
	return Ray2(p, a, dir) * signum(cross2(dir, p.Sub(a)))
}
