package program

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform3 places a 3D primitive in the world as a rigid matrix mapping
// the primitive's frame to world space. The zero value is the identity.
type Transform3 struct {
	fwd sdf.M44
	inv sdf.M44
	set bool
}

// EulerMatrix3 returns the rotation for Euler angles in degrees, applied
// about X, then Y, then Z.
func EulerMatrix3(rot v3.Vec) sdf.M44 {
	return sdf.RotateZ(sdf.DtoR(rot.Z)).Mul(sdf.RotateY(sdf.DtoR(rot.Y))).Mul(sdf.RotateX(sdf.DtoR(rot.X)))
}

// NewTransform3 returns a transform that rotates by rot, given as Euler
// angles in degrees applied about X, then Y, then Z, and then translates
// by pos.
func NewTransform3(pos, rot v3.Vec) Transform3 {
	if rot == (v3.Vec{}) {
		return Translate3(pos)
	}
	return Matrix3(sdf.Translate3d(pos).Mul(EulerMatrix3(rot)))
}

// Translate3 is shorthand for a translation-only transform.
func Translate3(pos v3.Vec) Transform3 {
	return Matrix3(sdf.Translate3d(pos))
}

// Matrix3 wraps a rotate/translate matrix. The inverse is baked in so that
// evaluation costs one matrix product per primitive.
func Matrix3(m sdf.M44) Transform3 {
	return Transform3{fwd: m, inv: m.Inverse(), set: true}
}

// Matrix returns the local-to-world matrix.
func (t Transform3) Matrix() sdf.M44 {
	if !t.set {
		return sdf.Identity3d()
	}
	return t.fwd
}

// Then returns the transform that applies child first and t second, which
// is how a child placed inside a transformed parent ends up in the world.
func (t Transform3) Then(child Transform3) Transform3 {
	switch {
	case !child.set:
		return t
	case !t.set:
		return child
	}
	return Matrix3(t.fwd.Mul(child.fwd))
}

// Position returns where the primitive's origin lands in the world.
func (t Transform3) Position() v3.Vec {
	if !t.set {
		return v3.Vec{}
	}
	return v3.Vec{X: t.fwd[3], Y: t.fwd[7], Z: t.fwd[11]}
}

// Rotation returns Euler angles in degrees (X, then Y, then Z) that
// reproduce the transform's rotation.
func (t Transform3) Rotation() v3.Vec {
	if !t.set {
		return v3.Vec{}
	}
	m := t.fwd
	sy := math.Max(-1, math.Min(1, -m[8]))
	y := math.Asin(sy)
	var x, z float64
	if math.Abs(sy) < 1-1e-12 {
		x = math.Atan2(m[9], m[10])
		z = math.Atan2(m[4], m[0])
	} else {
		// Gimbal lock: X and Z share one axis, put it all on Z.
		z = math.Atan2(-m[1], m[5])
	}
	return v3.Vec{X: sdf.RtoD(x), Y: sdf.RtoD(y), Z: sdf.RtoD(z)}
}

// Local maps a world point into the primitive's frame.
func (t Transform3) Local(p v3.Vec) v3.Vec {
	if !t.set {
		return p
	}
	return t.inv.MulPosition(p)
}

// World maps a point in the primitive's frame to world space.
func (t Transform3) World(p v3.Vec) v3.Vec {
	if !t.set {
		return p
	}
	return t.fwd.MulPosition(p)
}

// Transform2 places a 2D primitive in the plane. The zero value is the
// identity.
type Transform2 struct {
	fwd sdf.M33
	inv sdf.M33
	set bool
}

// NewTransform2 returns a transform that rotates counter-clockwise by angle
// degrees and then translates by pos.
func NewTransform2(pos v2.Vec, angle float64) Transform2 {
	if angle == 0 {
		return Translate2(pos)
	}
	return Matrix2(sdf.Translate2d(pos).Mul(sdf.Rotate2d(sdf.DtoR(angle))))
}

// Translate2 is shorthand for a translation-only transform.
func Translate2(pos v2.Vec) Transform2 {
	return Matrix2(sdf.Translate2d(pos))
}

func Matrix2(m sdf.M33) Transform2 {
	return Transform2{fwd: m, inv: m.Inverse(), set: true}
}

func (t Transform2) Matrix() sdf.M33 {
	if !t.set {
		return sdf.Identity2d()
	}
	return t.fwd
}

// Then applies child first and t second.
func (t Transform2) Then(child Transform2) Transform2 {
	switch {
	case !child.set:
		return t
	case !t.set:
		return child
	}
	return Matrix2(t.fwd.Mul(child.fwd))
}

func (t Transform2) Position() v2.Vec {
	if !t.set {
		return v2.Vec{}
	}
	return v2.Vec{X: t.fwd[2], Y: t.fwd[5]}
}

// Angle returns the rotation in degrees, in (-180, 180].
func (t Transform2) Angle() float64 {
	if !t.set {
		return 0
	}
	return sdf.RtoD(math.Atan2(t.fwd[3], t.fwd[0]))
}

func (t Transform2) Local(p v2.Vec) v2.Vec {
	if !t.set {
		return p
	}
	return t.inv.MulPosition(p)
}

func (t Transform2) World(p v2.Vec) v2.Vec {
	if !t.set {
		return p
	}
	return t.fwd.MulPosition(p)
}
