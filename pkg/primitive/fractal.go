package primitive

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Sierpinski is a Sierpinski triangle of circumradius r centered at the
// origin, subdivided depth times. Outside the triangle it falls back to the
// equilateral triangle distance.
func Sierpinski(p v2.Vec, r float64, depth uint) float64 {
	s := p.MulScalar(1 / (r * sqrt3))
	z := s.Y / sqrt3
	q := [3]float64{-z - s.X + 1.0/3, -z + s.X + 1.0/3, 2*z + 1.0/3}
	if q[0] < 0 || q[1] < 0 || q[2] < 0 {
		return EquilateralTriangle(p, r)
	}
	n := math.Exp2(float64(depth))
	f := int64(-1)
	for _, c := range q {
		f &= int64((1 - c) * n)
	}
	if f == 0 {
		m := math.Inf(1)
		for _, c := range q {
			m = math.Min(m, math.Mod(c, 1/n))
		}
		return -m * r * 3 / 2
	}
	cell := math.Exp2(math.Floor(math.Log2(float64(f)))) * 2 / n
	m := math.Inf(1)
	for _, c := range q {
		m = math.Min(m, math.Mod((1-c)*2, cell))
	}
	return m * r * 3 / 4
}

// Koch is a Koch snowflake of outer radius r refined n times.
func Koch(p v2.Vec, r float64, n uint) float64 {
	p = rotate2(p.Abs(), math.Pi/3).Sub(v2.Vec{Y: 0.5 * r})
	const turn = -math.Pi / 6
	w := math.Cos(turn) * r
	for i := uint(0); i < 2*n+2; i++ {
		p = rotate2(v2.Vec{X: math.Abs(p.X) - w, Y: -p.Y}, turn)
		w /= sqrt3
		p.X += w
	}
	return signum(p.Y) * v2.Vec{X: p.X - clamp(p.X, -w, w), Y: p.Y}.Length()
}
