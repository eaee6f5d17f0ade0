package primitive

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// minLength2 is the floor applied to squared segment lengths before they are
// used as a divisor, so degenerate segments collapse to their endpoint.
const minLength2 = 1e-12

func saturate(x float64) float64 {
	return clamp(x, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// sign follows GLSL: zero maps to zero.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// signum maps zero to one, so a point on the boundary counts as outside.
func signum(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// projectOntoSegment3 returns the component of v along the segment ab,
// clamped to the segment's extent.
func projectOntoSegment3(v, ab v3.Vec) v3.Vec {
	l2 := math.Max(ab.Dot(ab), minLength2)
	return ab.MulScalar(saturate(v.Dot(ab) / l2))
}

func projectOntoSegment2(v, ab v2.Vec) v2.Vec {
	l2 := math.Max(ab.Dot(ab), minLength2)
	return ab.MulScalar(saturate(v.Dot(ab) / l2))
}

// cross2 is the z component of the 3D cross product of a and b.
func cross2(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func rotate2(p v2.Vec, angle float64) v2.Vec {
	s, c := math.Sincos(angle)
	return v2.Vec{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y}
}

// boxBound is the standard box distance applied to an already folded
// offset q = |p| - half.
func boxBound3(q v3.Vec) float64 {
	return q.Max(v3.Vec{}).Length() + math.Min(q.MaxComponent(), 0)
}

func boxBound2(q v2.Vec) float64 {
	return q.Max(v2.Vec{}).Length() + math.Min(q.MaxComponent(), 0)
}
