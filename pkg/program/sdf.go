package program

import (
	"math"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultExtent is the half-size of the bounding box reported for programs
// whose shape is unbounded, such as a lone plane.
const DefaultExtent = 2.0

// bounds3 is an axis-aligned box that may be infinite in every direction.
type bounds3 struct {
	lo, hi    v3.Vec
	unbounded bool
}

func (b bounds3) union(o bounds3) bounds3 {
	if b.unbounded || o.unbounded {
		return bounds3{unbounded: true}
	}
	return bounds3{lo: b.lo.Min(o.lo), hi: b.hi.Max(o.hi)}
}

// grow pads the box by d on every side.
func (b bounds3) grow(d float64) bounds3 {
	if b.unbounded {
		return b
	}
	pad := v3.Vec{X: d, Y: d, Z: d}
	return bounds3{lo: b.lo.Sub(pad), hi: b.hi.Add(pad)}
}

func (b bounds3) intersect(o bounds3) bounds3 {
	switch {
	case b.unbounded:
		return o
	case o.unbounded:
		return b
	}
	// Disjoint boxes collapse to an empty box at the overlap's corner.
	lo, hi := b.lo.Max(o.lo), b.hi.Min(o.hi)
	return bounds3{lo: lo, hi: hi.Max(lo)}
}

// Bounds returns the world-space box enclosing the program's shape. ok is
// false when the shape is unbounded or the program is empty or malformed.
func (prog Program3) Bounds() (box sdf.Box3, ok bool) {
	if len(prog) == 0 || prog.Check() != nil {
		return sdf.Box3{}, false
	}
	st := make([]bounds3, 0, StackCapacity)
	for _, in := range prog {
		switch in.Code {
		case CodePush:
			st = append(st, shapeBounds3(in))
			continue
		case CodeOnion:
			st[len(st)-1] = st[len(st)-1].grow(in.Thickness)
			continue
		}
		a, b := st[len(st)-2], st[len(st)-1]
		st = st[:len(st)-2]
		st = append(st, combine(in.Op, a, b, bounds3.union, bounds3.intersect))
	}
	r := st[len(st)-1]
	if r.unbounded {
		return sdf.Box3{}, false
	}
	return sdf.Box3{Min: r.lo, Max: r.hi}, true
}

func shapeBounds3(in Instruction3) bounds3 {
	lo, hi, ok := in.Shape.Bounds()
	if !ok {
		return bounds3{unbounded: true}
	}
	out := bounds3{lo: v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}, hi: v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}}
	for i := 0; i < 8; i++ {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		w := in.Transform.World(c)
		out.lo, out.hi = out.lo.Min(w), out.hi.Max(w)
	}
	return out
}

// combine propagates bounds through an operator. Difference keeps the base
// operand; xor can cover either operand.
func combine[B any](op csg.Op, a, b B, union, intersect func(B, B) B) B {
	switch op {
	case csg.OpIntersection:
		return intersect(a, b)
	case csg.OpDifference:
		return b
	default:
		return union(a, b)
	}
}

// SDF3 adapts a Program3 to the sdfx sdf.SDF3 interface.
type SDF3 struct {
	prog Program3
	box  sdf.Box3
}

// NewSDF3 wraps prog for use with sdfx renderers. Unbounded programs get a
// cube of half-size DefaultExtent around the origin.
func NewSDF3(prog Program3) *SDF3 {
	box, ok := prog.Bounds()
	if !ok {
		e := v3.Vec{X: DefaultExtent, Y: DefaultExtent, Z: DefaultExtent}
		box = sdf.Box3{Min: e.MulScalar(-1), Max: e}
	}
	return &SDF3{prog: prog, box: box}
}

func (s *SDF3) Evaluate(p v3.Vec) float64 { return s.prog.Evaluate(p) }

func (s *SDF3) BoundingBox() sdf.Box3 { return s.box }

type bounds2 struct {
	lo, hi    v2.Vec
	unbounded bool
}

func (b bounds2) union(o bounds2) bounds2 {
	if b.unbounded || o.unbounded {
		return bounds2{unbounded: true}
	}
	return bounds2{lo: b.lo.Min(o.lo), hi: b.hi.Max(o.hi)}
}

func (b bounds2) grow(d float64) bounds2 {
	if b.unbounded {
		return b
	}
	pad := v2.Vec{X: d, Y: d}
	return bounds2{lo: b.lo.Sub(pad), hi: b.hi.Add(pad)}
}

func (b bounds2) intersect(o bounds2) bounds2 {
	switch {
	case b.unbounded:
		return o
	case o.unbounded:
		return b
	}
	lo, hi := b.lo.Max(o.lo), b.hi.Min(o.hi)
	return bounds2{lo: lo, hi: hi.Max(lo)}
}

func (prog Program2) Bounds() (box sdf.Box2, ok bool) {
	if len(prog) == 0 || prog.Check() != nil {
		return sdf.Box2{}, false
	}
	st := make([]bounds2, 0, StackCapacity)
	for _, in := range prog {
		switch in.Code {
		case CodePush:
			st = append(st, shapeBounds2(in))
			continue
		case CodeOnion:
			st[len(st)-1] = st[len(st)-1].grow(in.Thickness)
			continue
		}
		a, b := st[len(st)-2], st[len(st)-1]
		st = st[:len(st)-2]
		st = append(st, combine(in.Op, a, b, bounds2.union, bounds2.intersect))
	}
	r := st[len(st)-1]
	if r.unbounded {
		return sdf.Box2{}, false
	}
	return sdf.Box2{Min: r.lo, Max: r.hi}, true
}

func shapeBounds2(in Instruction2) bounds2 {
	lo, hi, ok := in.Shape.Bounds()
	if !ok {
		return bounds2{unbounded: true}
	}
	out := bounds2{lo: v2.Vec{X: math.Inf(1), Y: math.Inf(1)}, hi: v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}}
	for _, c := range []v2.Vec{lo, hi, {X: lo.X, Y: hi.Y}, {X: hi.X, Y: lo.Y}} {
		w := in.Transform.World(c)
		out.lo, out.hi = out.lo.Min(w), out.hi.Max(w)
	}
	return out
}

// SDF2 adapts a Program2 to the sdfx sdf.SDF2 interface.
type SDF2 struct {
	prog Program2
	box  sdf.Box2
}

func NewSDF2(prog Program2) *SDF2 {
	box, ok := prog.Bounds()
	if !ok {
		e := v2.Vec{X: DefaultExtent, Y: DefaultExtent}
		box = sdf.Box2{Min: e.MulScalar(-1), Max: e}
	}
	return &SDF2{prog: prog, box: box}
}

func (s *SDF2) Evaluate(p v2.Vec) float64 { return s.prog.Evaluate(p) }

func (s *SDF2) BoundingBox() sdf.Box2 { return s.box }
