package frame

import (
	"image/color"
	"math"

	"github.com/chazu/sdfvm/pkg/march"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	colInside  = v3.Vec{X: 0.65, Y: 0.85, Z: 1.0}
	colOutside = v3.Vec{X: 0.9, Y: 0.6, Z: 0.3}
	colYellow  = v3.Vec{X: 1, Y: 1}
	colWhite   = v3.Vec{X: 1, Y: 1, Z: 1}
	lightDir   = v3.Vec{X: -0.4, Y: 0.8, Z: -0.45}.Normalize()
)

func mix3(a, b v3.Vec, t float64) v3.Vec {
	return a.MulScalar(1 - t).Add(b.MulScalar(t))
}

func smoothstep(e0, e1, x float64) float64 {
	t := math.Max(0, math.Min(1, (x-e0)/(e1-e0)))
	return t * t * (3 - 2*t)
}

// surfaceColor is a stripe texture over the hit point lit by one
// directional light.
func surfaceColor(s Sample) v3.Vec {
	p := s.Point
	stripes := (math.Abs(math.Sin(p.X*50)) + math.Abs(math.Sin(p.Y*50)) + math.Abs(math.Sin(p.Z*50))) * 0.3
	diffuse := math.Max(0, s.Normal.Dot(lightDir))
	g := stripes * (0.35 + 0.65*diffuse)
	return v3.Vec{X: g, Y: g, Z: g}
}

// Shade colors a traced sample. Missed rays get the background. Rays that
// cross the slice plane near the shape get inside/outside distance bands
// with a white iso line at zero. Probe shells are drawn in yellow.
func Shade(s Sample) color.RGBA {
	var col v3.Vec
	switch {
	case !s.Hit():
		col = colOutside
	case s.ProbeShell < 0:
		col = surfaceColor(s)
	default:
		ring := colYellow.MulScalar(s.ProbeShell)
		if s.Surface == march.SurfaceProbe {
			col = ring
		} else {
			col = mix3(ring, surfaceColor(s), 0.5)
		}
	}

	if s.Sliced {
		sd := s.SliceDistance
		keep := s.Surface == march.SurfaceProbe ||
			(s.ProbeShell >= 0 && s.InsideProbe) ||
			(s.Hit() && s.BehindSlice && sd > 0)
		switch {
		case keep:
		case sd < 1:
			base := col
			if sd < 0 {
				base = colInside
			}
			amount := 1.0
			if sd < 0 && s.BehindSlice {
				amount = 0.8
			}
			band := base.MulScalar((1 - math.Exp(-6*math.Abs(sd))) * (0.8 + 0.2*math.Cos(150*sd)))
			col = mix3(col, band, amount)
			col = mix3(col, colWhite, 1-smoothstep(0, 0.005, math.Abs(sd)))
		default:
			col = col.MulScalar(0.8)
		}
	}
	return toRGBA(col)
}

// Shade2 colors a raw 2D distance: blue inside, orange outside, banded
// by distance, with a white line on the boundary.
func Shade2(d float64) color.RGBA {
	base := colOutside
	if d < 0 {
		base = colInside
	}
	col := base.MulScalar((1 - math.Exp(-6*math.Abs(d))) * (0.8 + 0.2*math.Cos(150*d)))
	col = mix3(col, colWhite, 1-smoothstep(0, 0.005, math.Abs(d)))
	return toRGBA(col)
}

func toRGBA(c v3.Vec) color.RGBA {
	q := func(x float64) uint8 {
		if math.IsNaN(x) {
			return 0
		}
		return uint8(math.Round(255 * math.Max(0, math.Min(1, x))))
	}
	return color.RGBA{R: q(c.X), G: q(c.Y), B: q(c.Z), A: 255}
}
