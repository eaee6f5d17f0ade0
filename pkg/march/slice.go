package march

import (
	"math"

	"github.com/chazu/sdfvm/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelEps is the smallest |rd.z| for which a ray is considered to cross
// the slice plane.
const parallelEps = 1e-9

// Slice cuts away everything in front of the plane z = Z, the side facing a
// camera that looks along +Z.
type Slice struct {
	Z       float64
	Enabled bool
}

// SliceHalfSpace is the signed distance to the half-space z < sliceZ that
// slicing removes, negated: positive in front of the plane.
func SliceHalfSpace(p v3.Vec, sliceZ float64) float64 {
	return p.Z - sliceZ
}

// Apply cuts d, the field value at p, by the slice plane.
func (s Slice) Apply(d float64, p v3.Vec) float64 {
	if !s.Enabled {
		return d
	}
	return csg.Difference(SliceHalfSpace(p, s.Z), d)
}

// Sliced returns f with the half-space z < sliceZ removed.
func Sliced(f Field, sliceZ float64) Field {
	s := Slice{Z: sliceZ, Enabled: true}
	return FieldFunc(func(p v3.Vec) float64 {
		return s.Apply(f.Evaluate(p), p)
	})
}

// SlicePlaneDistance solves for the distance along the ray to the plane
// z = sliceZ. Rays parallel to the plane or crossing it behind the origin
// return cfg.MaxDist.
func SlicePlaneDistance(ro, rd v3.Vec, sliceZ float64, cfg Config) float64 {
	if math.Abs(rd.Z) < parallelEps {
		return cfg.MaxDist
	}
	t := (sliceZ - ro.Z) / rd.Z
	if t < 0 {
		return cfg.MaxDist
	}
	return t
}

// FieldAtSlice evaluates f where the ray crosses the slice plane, or
// returns cfg.MaxDist when it does not cross it in front of the origin.
func FieldAtSlice(ro, rd v3.Vec, f Field, sliceZ float64, cfg Config) float64 {
	t := SlicePlaneDistance(ro, rd, sliceZ, cfg)
	if t >= cfg.MaxDist {
		return cfg.MaxDist
	}
	return f.Evaluate(ro.Add(rd.MulScalar(t)))
}
