package march

import (
	"math"

	"github.com/chazu/sdfvm/pkg/csg"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// hash31 maps a lattice point to a pseudo-random value in [0, 1).
func hash31(p v3.Vec) float64 {
	h := math.Sin(p.X*127.1+p.Y*311.7+p.Z*74.7) * 43758.5453
	return h - math.Floor(h)
}

var corners = [8]v3.Vec{
	{}, {Z: 1}, {Y: 1}, {Y: 1, Z: 1},
	{X: 1}, {X: 1, Z: 1}, {X: 1, Y: 1}, {X: 1, Y: 1, Z: 1},
}

// Base is a lattice of spheres with random radii, one per integer corner.
func Base(p v3.Vec) float64 {
	i := v3.Vec{X: math.Floor(p.X), Y: math.Floor(p.Y), Z: math.Floor(p.Z)}
	f := p.Sub(i)
	d := math.Inf(1)
	for _, c := range corners {
		r := 0.5 * hash31(i.Add(c))
		d = math.Min(d, f.Sub(c).Length()-r)
	}
	return d
}

// octaveRotation rotates and scales the domain by 2 between octaves.
func octaveRotation(p v3.Vec) v3.Vec {
	return v3.Vec{
		X: 0.00*p.X - 1.60*p.Y - 1.20*p.Z,
		Y: 1.60*p.X + 0.72*p.Y - 0.96*p.Z,
		Z: 1.20*p.X - 0.96*p.Y + 1.28*p.Z,
	}
}

// fbmInset is how far each octave may carve into the running surface,
// relative to its scale.
const fbmInset = 0.1

// FBM adds octaves of Base detail to the distance d at p. Each octave is
// clipped to a band around the current surface with a smooth max and
// merged with a smooth min of width k·s.
func FBM(p v3.Vec, d float64, octaves int, k float64) float64 {
	s := 1.0
	for i := 0; i < octaves; i++ {
		n := s * Base(p)
		n = csg.SmoothMax(n, d-fbmInset*s, k*s)
		d = csg.SmoothMin(n, d, k*s)
		p = octaveRotation(p)
		s *= 0.5
	}
	return d
}

// Terrain is a ground plane at y = Height roughened by fBm.
type Terrain struct {
	Height  float64
	Octaves int
	BlendK  float64
}

// DefaultTerrainHeight is the ground plane height.
const DefaultTerrainHeight = -0.3

// NewTerrain returns a terrain using the octave count and blend width of
// cfg.
func NewTerrain(cfg Config) Terrain {
	return Terrain{Height: DefaultTerrainHeight, Octaves: cfg.Octaves, BlendK: cfg.BlendK}
}

func (t Terrain) Evaluate(p v3.Vec) float64 {
	return FBM(p, p.Y-t.Height, t.Octaves, t.BlendK)
}
