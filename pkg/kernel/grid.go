package kernel

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/march"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// GridFunc maps parameter coordinates in [0,1]x[0,1] to a surface point.
type GridFunc func(u, v float64) v3.Vec

// quadIndices are the two triangles of one grid cell, offset by 4 per cell.
var quadIndices = [6]uint32{0, 1, 3, 0, 2, 3}

// Grid samples f over an nu by nv lattice of cells. Every cell owns four
// vertices in the order (u1,v1), (u1,v2), (u2,v1), (u2,v2), so cells share no
// vertices and rows can be filled concurrently. The normal of each cell is
// the cross product of its diagonals. workers <= 0 uses GOMAXPROCS.
func Grid(ctx context.Context, nu, nv int, f GridFunc, workers int) (*Mesh, error) {
	if nu <= 0 || nv <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", nu, nv)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	start := time.Now()
	cells := nu * nv
	m := &Mesh{
		Vertices: make([]float32, cells*4*3),
		Normals:  make([]float32, cells*4*3),
		Indices:  make([]uint32, cells*6),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < nu; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u1 := float64(i) / float64(nu)
			u2 := float64(i+1) / float64(nu)
			for j := 0; j < nv; j++ {
				v1 := float64(j) / float64(nv)
				v2 := float64(j+1) / float64(nv)
				quad := [4]v3.Vec{f(u1, v1), f(u1, v2), f(u2, v1), f(u2, v2)}
				n := quadNormal(quad)
				cell := i*nv + j
				for k, p := range quad {
					o := (cell*4 + k) * 3
					m.Vertices[o], m.Vertices[o+1], m.Vertices[o+2] = float32(p.X), float32(p.Y), float32(p.Z)
					m.Normals[o], m.Normals[o+1], m.Normals[o+2] = float32(n.X), float32(n.Y), float32(n.Z)
				}
				for k, idx := range quadIndices {
					m.Indices[cell*6+k] = idx + uint32(cell*4)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logging.Logger().Debug("grid mesh built",
		"cells", cells, "triangles", m.TriangleCount(), "elapsed", time.Since(start))
	return m, nil
}

func quadNormal(q [4]v3.Vec) v3.Vec {
	n := q[3].Sub(q[0]).Cross(q[1].Sub(q[2]))
	l := n.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{}
	}
	return n.MulScalar(1 / l)
}

// Spherical maps (u, v) to a unit direction with polar angle u*pi measured
// from +Z and azimuth v*2pi.
func Spherical(u, v float64) v3.Vec {
	theta := u * math.Pi
	phi := v * 2 * math.Pi
	st, ct := math.Sincos(theta)
	sp, cp := math.Sincos(phi)
	return v3.Vec{X: st * cp, Y: st * sp, Z: ct}
}

// ShrinkWrap meshes a star-shaped field by marching inward from a sphere of
// the given radius toward the origin along every grid direction. Directions
// whose ray misses collapse to the origin.
func ShrinkWrap(ctx context.Context, f march.Field, radius float64, nu, nv int, cfg march.Config, workers int) (*Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("shrink-wrap radius must be positive, got %g", radius)
	}
	return Grid(ctx, nu, nv, func(u, v float64) v3.Vec {
		dir := Spherical(u, v)
		r := march.March(dir.MulScalar(radius), dir.MulScalar(-1), f, cfg)
		if !r.Hit() {
			return v3.Vec{}
		}
		return r.Point
	}, workers)
}
