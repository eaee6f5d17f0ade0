// Package frame turns distance fields into images: cameras feed rays, a
// tracer classifies each sample, and the renderer runs samples in
// parallel.
package frame

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Camera produces the ray for the pixel center (x, y) of a w×h frame.
// Directions are unit length.
type Camera interface {
	Ray(x, y float64, w, h int) (ro, rd v3.Vec)
}

// UV maps a pixel position to screen coordinates: the origin at the frame
// center, y up, and one unit spanning the frame height.
func UV(x, y float64, w, h int) v2.Vec {
	fw, fh := float64(w), float64(h)
	return v2.Vec{X: (x - 0.5*fw) / fh, Y: (0.5*fh - y) / fh}
}

// Orbit looks at the origin from Dist units away. Yaw turns about Y and
// Pitch tilts about X, both in radians. With zero angles it sits on -Z
// looking along +Z.
type Orbit struct {
	Yaw, Pitch float64
	Dist       float64
}

func (o Orbit) Ray(x, y float64, w, h int) (ro, rd v3.Vec) {
	rm := sdf.RotateY(o.Yaw).Mul(sdf.RotateX(o.Pitch))
	uv := UV(x, y, w, h)
	ro = rm.MulPosition(v3.Vec{Z: -o.Dist})
	rd = rm.MulPosition(v3.Vec{X: uv.X, Y: uv.Y, Z: 1}).Normalize()
	return ro, rd
}

// Pinhole sits at Origin looking along -Z.
type Pinhole struct {
	Origin v3.Vec
	// Focal is the distance from the eye to the unit-height image plane.
	Focal float64
}

func (c Pinhole) Ray(x, y float64, w, h int) (ro, rd v3.Vec) {
	uv := UV(x, y, w, h)
	f := c.Focal
	if f <= 0 {
		f = 1
	}
	return c.Origin, v3.Vec{X: uv.X, Y: uv.Y, Z: -f}.Normalize()
}

// FlyOver returns the terrain camera at time t: it drifts along +Z,
// sways in X and floats at half the field height above the ground.
func FlyOver(t float64, ground func(v3.Vec) float64) Pinhole {
	p := v3.Vec{X: math.Sin(t), Z: t}
	p.Y = 0.5 * ground(p)
	return Pinhole{Origin: p, Focal: 1}
}
