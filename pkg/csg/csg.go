// Package csg implements the boolean combinators used to compose signed
// distances: union, intersection, difference and xor, plus the polynomial
// smooth minimum and maximum used for blending, and the onion shell.
package csg

import (
	"fmt"
	"math"
	"strings"
)

// Op is a binary boolean operator over two signed distances.
type Op uint8

const (
	OpUnion        Op = iota // min(a, b)
	OpIntersection           // max(a, b)
	OpDifference             // max(b, -a): a carved out of b
	OpXor                    // max(min(a, b), -max(a, b))
)

// Ops lists every operator in declaration order.
var Ops = []Op{OpUnion, OpIntersection, OpDifference, OpXor}

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	case OpXor:
		return "xor"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Valid reports whether o is one of the declared operators.
func (o Op) Valid() bool {
	return o <= OpXor
}

// ParseOp returns the operator with the given name. "subtract" and
// "intersect" are accepted as aliases.
func ParseOp(name string) (Op, error) {
	switch strings.ToLower(name) {
	case "union":
		return OpUnion, nil
	case "intersection", "intersect":
		return OpIntersection, nil
	case "difference", "subtract":
		return OpDifference, nil
	case "xor":
		return OpXor, nil
	}
	return 0, fmt.Errorf("unknown operator %q, expected union, intersection, difference or xor", name)
}

// Apply combines a and b. a is the operand pushed first.
func (o Op) Apply(a, b float64) float64 {
	switch o {
	case OpUnion:
		return Union(a, b)
	case OpIntersection:
		return Intersection(a, b)
	case OpDifference:
		return Difference(a, b)
	case OpXor:
		return Xor(a, b)
	}
	panic(fmt.Sprintf("csg: invalid operator %d", uint8(o)))
}

// Union is the geometric union of two shapes.
func Union(a, b float64) float64 {
	return math.Min(a, b)
}

// Intersection is the geometric intersection of two shapes.
func Intersection(a, b float64) float64 {
	return math.Max(a, b)
}

// Difference removes shape a from shape b. Not symmetric.
func Difference(a, b float64) float64 {
	return math.Max(b, -a)
}

// Xor is negative where exactly one of the two shapes is negative.
func Xor(a, b float64) float64 {
	return math.Max(math.Min(a, b), -math.Max(a, b))
}

func saturate(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func mix(x, y, a float64) float64 {
	return x*(1-a) + y*a
}

// SmoothMin blends d1 and d2 over a band of width k. The result never
// exceeds min(d1, d2) and converges to it as k goes to zero. A non-positive
// k degenerates to the hard minimum.
func SmoothMin(d1, d2, k float64) float64 {
	if k <= 0 {
		return math.Min(d1, d2)
	}
	h := saturate(0.5 + 0.5*(d2-d1)/k)
	return mix(d2, d1, h) - k*h*(1-h)
}

// SmoothMax is the dual of SmoothMin.
func SmoothMax(d1, d2, k float64) float64 {
	if k <= 0 {
		return math.Max(d1, d2)
	}
	h := saturate(0.5 - 0.5*(d2-d1)/k)
	return mix(d2, d1, h) + k*h*(1-h)
}

// Onion hollows a shape into a shell of thickness t around its surface.
func Onion(d, t float64) float64 {
	return math.Abs(d) - t
}
