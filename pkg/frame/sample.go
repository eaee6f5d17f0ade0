package frame

import (
	"math"

	"github.com/chazu/sdfvm/pkg/march"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Sample is everything the shading stage needs to color one pixel.
type Sample struct {
	march.Result

	// Sliced is set when the scene is cut by a slice plane. SliceDistance
	// is then the field value where the ray crosses that plane, or MaxDist
	// when it does not cross in front of the camera.
	Sliced        bool
	SliceDistance float64
	// BehindSlice is set when the camera sits past the slice plane.
	BehindSlice bool

	// ProbeShell is the iso-ring brightness in [0, 1] where the ray meets
	// the probe sphere, or -1 when it does not.
	ProbeShell float64
	// InsideProbe is set when the probe center lies inside the shape.
	InsideProbe bool
}

// Tracer classifies a single ray.
type Tracer interface {
	Trace(ro, rd v3.Vec) Sample
}

// Scene3 traces a 3D field with optional slicing and probe overlay.
type Scene3 struct {
	Field  march.Field
	Config march.Config
	Slice  march.Slice
	Probe  march.Probe
}

func (s Scene3) Trace(ro, rd v3.Vec) Sample {
	cfg := s.Config
	out := Sample{
		Result:     march.MarchWithProbe(ro, rd, s.Field, s.Slice, s.Probe, cfg),
		ProbeShell: -1,
	}
	if s.Slice.Enabled {
		out.Sliced = true
		out.SliceDistance = march.FieldAtSlice(ro, rd, s.Field, s.Slice.Z, cfg)
		out.BehindSlice = ro.Z > s.Slice.Z
	}
	if s.Probe.Active {
		out.InsideProbe = s.Field.Evaluate(s.Probe.Center) < 0
		shell := march.MarchProbeSurface(ro, rd, s.Slice, s.Probe, cfg)
		if shell.Hit() {
			r := math.Sqrt(math.Max(s.Probe.Radius, 1e-6))
			out.ProbeShell = math.Abs(math.Sin((shell.Point.Z - s.Probe.Center.Z) * 30 / r))
		}
	}
	return out
}
