package march

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Probe is a sphere overlaid on a traced scene to show one iso-distance
// shell of the field.
type Probe struct {
	Center v3.Vec
	Radius float64
	Active bool
}

// ProbeAt returns an active probe at center whose radius is the unsigned
// field value there, so its surface touches the nearest point of f.
func ProbeAt(f Field, center v3.Vec) Probe {
	return Probe{Center: center, Radius: math.Abs(f.Evaluate(center)), Active: true}
}

// Distance is the signed distance from p to the probe sphere.
func (pr Probe) Distance(p v3.Vec) float64 {
	return p.Sub(pr.Center).Length() - pr.Radius
}

// MarchWithProbe traces f cut by slice, with the sliced probe unioned in
// while it is active. The result records which surface was hit.
func MarchWithProbe(ro, rd v3.Vec, f Field, slice Slice, probe Probe, cfg Config) Result {
	combined := func(p v3.Vec) (float64, Surface) {
		ds := slice.Apply(f.Evaluate(p), p)
		if !probe.Active {
			return ds, SurfaceShape
		}
		db := slice.Apply(probe.Distance(p), p)
		if db <= ds {
			return db, SurfaceProbe
		}
		return ds, SurfaceShape
	}
	r := trace(ro, rd, combined, cfg)
	if r.Hit() {
		r.Normal = Normal(FieldFunc(func(p v3.Vec) float64 {
			d, _ := combined(p)
			return d
		}), r.Point, cfg.NormalEps)
	}
	return r
}

// MarchProbeSurface traces only the sliced probe sphere. Inactive probes
// diverge immediately.
func MarchProbeSurface(ro, rd v3.Vec, slice Slice, probe Probe, cfg Config) Result {
	if !probe.Active {
		return Result{Status: Divergent, Distance: cfg.MaxDist}
	}
	f := FieldFunc(func(p v3.Vec) float64 {
		return slice.Apply(probe.Distance(p), p)
	})
	return March(ro, rd, f, cfg)
}
