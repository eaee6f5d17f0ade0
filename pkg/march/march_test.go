package march

import (
	"math"
	"testing"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func sphereField(center v3.Vec, r float64) Field {
	return FieldFunc(func(p v3.Vec) float64 {
		return primitive.Sphere(p.Sub(center), r)
	})
}

func approx(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

func TestMarchHitsSphere(t *testing.T) {
	cfg := DefaultConfig()
	for _, d := range []float64{2, 5, 30} {
		ro := v3.Vec{}
		rd := v3.Vec{X: 1}
		r := March(ro, rd, sphereField(v3.Vec{X: d}, 1), cfg)
		if r.Status != Hit {
			t.Fatalf("d=%v: status = %v, want hit", d, r.Status)
		}
		if math.Abs(r.Distance-(d-1)) > cfg.SurfDist {
			t.Errorf("d=%v: distance = %v, want %v", d, r.Distance, d-1)
		}
		if r.Steps > cfg.MaxSteps {
			t.Errorf("d=%v: steps = %d", d, r.Steps)
		}
		if !approx(r.Normal, v3.Vec{X: -1}, 0.05) {
			t.Errorf("d=%v: normal = %v, want (-1, 0, 0)", d, r.Normal)
		}
		if r.Surface != SurfaceShape {
			t.Errorf("d=%v: surface = %v", d, r.Surface)
		}
	}
}

func TestMarchDiverges(t *testing.T) {
	cfg := DefaultConfig()
	r := March(v3.Vec{}, v3.Vec{Y: -1}, sphereField(v3.Vec{X: 5}, 1), cfg)
	if r.Status != Divergent {
		t.Fatalf("status = %v, want divergent", r.Status)
	}
	if r.Distance <= cfg.MaxDist || r.Steps > cfg.MaxSteps {
		t.Errorf("distance = %v, steps = %d", r.Distance, r.Steps)
	}
	if r.Hit() {
		t.Error("Hit() = true for divergent ray")
	}
}

func TestMarchBudgetExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 10
	creep := FieldFunc(func(v3.Vec) float64 { return 0.01 })
	r := March(v3.Vec{}, v3.Vec{Z: 1}, creep, cfg)
	if r.Status != BudgetExhausted {
		t.Fatalf("status = %v, want budget-exhausted", r.Status)
	}
	if r.Steps != 10 || math.Abs(r.Distance-0.1) > 1e-9 {
		t.Errorf("steps = %d, distance = %v", r.Steps, r.Distance)
	}
}

func TestMarchTerminatesOnBrokenField(t *testing.T) {
	cfg := DefaultConfig()
	nan := FieldFunc(func(v3.Vec) float64 { return math.NaN() })
	if r := March(v3.Vec{}, v3.Vec{Z: 1}, nan, cfg); r.Status != BudgetExhausted {
		t.Errorf("NaN field status = %v, want budget-exhausted", r.Status)
	}
	inf := FieldFunc(func(v3.Vec) float64 { return math.Inf(1) })
	if r := March(v3.Vec{}, v3.Vec{Z: 1}, inf, cfg); r.Status != Divergent || r.Steps != 1 {
		t.Errorf("+Inf field = %+v, want divergent after one step", r)
	}
}

func TestSlicing(t *testing.T) {
	cfg := DefaultConfig()
	f := Sliced(sphereField(v3.Vec{}, 1), 0)
	r := March(v3.Vec{Z: -5}, v3.Vec{Z: 1}, f, cfg)
	if r.Status != Hit {
		t.Fatalf("status = %v, want hit", r.Status)
	}
	if math.Abs(r.Distance-5) > 1e-3 {
		t.Errorf("distance = %v, want 5 (the cut face)", r.Distance)
	}
	if !approx(r.Normal, v3.Vec{Z: -1}, 0.05) {
		t.Errorf("normal = %v, want (0, 0, -1)", r.Normal)
	}
	// Slicing beyond the shape removes it entirely.
	gone := Sliced(sphereField(v3.Vec{}, 1), 2)
	if r := March(v3.Vec{Z: -5}, v3.Vec{Z: 1}, gone, cfg); r.Hit() && r.Point.Z < 1.9 {
		t.Errorf("hit at %v in front of slice plane", r.Point)
	}
}

func TestSlicePlaneDistance(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name   string
		ro, rd v3.Vec
		want   float64
	}{
		{"ahead", v3.Vec{Z: -1}, v3.Vec{Z: 1}, 1.5},
		{"behind", v3.Vec{Z: 1}, v3.Vec{Z: 1}, cfg.MaxDist},
		{"parallel", v3.Vec{Z: -1}, v3.Vec{X: 1}, cfg.MaxDist},
		{"oblique", v3.Vec{}, v3.Vec{Y: math.Sqrt2 / 2, Z: math.Sqrt2 / 2}, 0.5 * math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlicePlaneDistance(tt.ro, tt.rd, 0.5, cfg); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SlicePlaneDistance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldAtSlice(t *testing.T) {
	cfg := DefaultConfig()
	f := sphereField(v3.Vec{}, 1)
	if got := FieldAtSlice(v3.Vec{Z: -5}, v3.Vec{Z: 1}, f, 0, cfg); math.Abs(got+1) > 1e-9 {
		t.Errorf("FieldAtSlice = %v, want -1", got)
	}
	if got := FieldAtSlice(v3.Vec{Z: -5}, v3.Vec{Y: 1}, f, 0, cfg); got != cfg.MaxDist {
		t.Errorf("parallel FieldAtSlice = %v, want MaxDist", got)
	}
}

func TestProbe(t *testing.T) {
	cfg := DefaultConfig()
	shape := sphereField(v3.Vec{Z: 10}, 1)
	probe := ProbeAt(shape, v3.Vec{})
	if probe.Radius != 9 || !probe.Active {
		t.Fatalf("ProbeAt = %+v, want radius 9", probe)
	}
	ro, rd := v3.Vec{Z: -20}, v3.Vec{Z: 1}

	r := MarchWithProbe(ro, rd, shape, Slice{}, probe, cfg)
	if r.Status != Hit || r.Surface != SurfaceProbe {
		t.Fatalf("with probe = %+v, want probe hit", r)
	}
	if math.Abs(r.Point.Z+9) > 1e-3 {
		t.Errorf("probe hit at %v, want z = -9", r.Point)
	}

	probe.Active = false
	r = MarchWithProbe(ro, rd, shape, Slice{}, probe, cfg)
	if r.Status != Hit || r.Surface != SurfaceShape || math.Abs(r.Point.Z-9) > 1e-3 {
		t.Errorf("inactive probe = %+v, want shape hit at z = 9", r)
	}
	if r := MarchProbeSurface(ro, rd, Slice{}, probe, cfg); r.Hit() {
		t.Error("inactive probe surface was hit")
	}
}

func TestMarchProbeSurfaceSliced(t *testing.T) {
	cfg := DefaultConfig()
	probe := Probe{Radius: 2, Active: true}
	r := MarchProbeSurface(v3.Vec{Z: -10}, v3.Vec{Z: 1}, Slice{Z: 1, Enabled: true}, probe, cfg)
	if !r.Hit() || math.Abs(r.Point.Z-1) > 1e-3 {
		t.Errorf("sliced probe = %+v, want hit on the cut at z = 1", r)
	}
}

func TestFBM(t *testing.T) {
	p := v3.Vec{X: 0.3, Y: 0.2, Z: -1.7}
	if got := FBM(p, 0.42, 0, 0.3); got != 0.42 {
		t.Errorf("zero octaves = %v, want input distance", got)
	}
	for _, d := range []float64{-1, 0, 0.5, 3} {
		got := FBM(p, d, 4, 0.3)
		if math.IsNaN(got) || got > d+1e-12 {
			t.Errorf("FBM(d=%v) = %v, want <= d", d, got)
		}
	}
	for x := -3.0; x < 3; x += 0.37 {
		if b := Base(v3.Vec{X: x, Y: x * 0.5, Z: -x}); math.IsNaN(b) || b < -0.5 {
			t.Fatalf("Base = %v", b)
		}
	}
}

func TestTerrain(t *testing.T) {
	cfg, err := Profile("quality")
	if err != nil {
		t.Fatal(err)
	}
	terrain := NewTerrain(cfg)
	r := March(v3.Vec{X: 0.37, Y: 1, Z: 0.71}, v3.Vec{Y: -1}, terrain, cfg)
	if r.Status != Hit {
		t.Fatalf("status = %v, want hit", r.Status)
	}
	if r.Point.Y < DefaultTerrainHeight-0.01 || r.Point.Y > 0.04 {
		t.Errorf("terrain hit at y = %v", r.Point.Y)
	}
}

func TestProfiles(t *testing.T) {
	for _, name := range ProfileNames() {
		cfg, err := Profile(name)
		if err != nil {
			t.Fatalf("Profile(%q): %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("profile %q invalid: %v", name, err)
		}
	}
	if _, err := Profile("ultra"); err == nil {
		t.Error("Profile(ultra) returned nil error")
	}
	if got := DefaultConfig().MaxSteps; got != 100 {
		t.Errorf("default MaxSteps = %d, want 100", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"steps", func(c *Config) { c.MaxSteps = 0 }},
		{"dist", func(c *Config) { c.MaxDist = -1 }},
		{"surf", func(c *Config) { c.SurfDist = 0 }},
		{"surf above max", func(c *Config) { c.SurfDist = 1000 }},
		{"eps", func(c *Config) { c.NormalEps = 0 }},
		{"octaves", func(c *Config) { c.Octaves = -1 }},
		{"blend", func(c *Config) { c.BlendK = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestOnionShellSliced(t *testing.T) {
	cfg := DefaultConfig()
	solid := sphereField(v3.Vec{}, 1)
	shell := FieldFunc(func(p v3.Vec) float64 {
		return csg.Onion(solid.Evaluate(p), 0.1)
	})
	rd := v3.Vec{Z: 1}

	// Through the center the slice of the solid is inside, the shell's is
	// the hollow.
	center := v3.Vec{Z: -5}
	if d := FieldAtSlice(center, rd, solid, 0, cfg); d >= 0 {
		t.Errorf("solid at slice = %g, want < 0", d)
	}
	if d := FieldAtSlice(center, rd, shell, 0, cfg); math.Abs(d-0.9) > 1e-12 {
		t.Errorf("shell at slice = %g, want 0.9", d)
	}
	if d := FieldAtSlice(v3.Vec{X: 0.95, Z: -5}, rd, shell, 0, cfg); d >= 0 {
		t.Errorf("shell wall at slice = %g, want < 0", d)
	}

	// Unsliced the ray stops at the outer wall; sliced it passes through the
	// hollow and stops at the far inner wall.
	if r := March(center, rd, shell, cfg); !r.Hit() || math.Abs(r.Distance-3.9) > 1e-3 {
		t.Errorf("outer wall: %+v, want hit at 3.9", r)
	}
	r := March(center, rd, Sliced(shell, 0), cfg)
	if !r.Hit() || math.Abs(r.Distance-5.9) > 1e-3 {
		t.Fatalf("inner wall: %+v, want hit at 5.9", r)
	}
	if r.Normal.Z > -0.9 {
		t.Errorf("inner wall normal = %v, want facing the camera", r.Normal)
	}
}
