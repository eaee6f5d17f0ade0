// Package march implements sphere tracing over signed distance fields,
// together with the slicing, probe and fBm variants layered on it.
package march

import (
	"fmt"
	"sort"
)

// Config holds the tuning constants of the tracer.
type Config struct {
	MaxSteps  int     // iteration budget per ray
	MaxDist   float64 // accumulated distance past which a ray diverges
	SurfDist  float64 // step size below which a ray hits
	NormalEps float64 // forward-difference offset for normals
	Octaves   int     // fBm octave count
	BlendK    float64 // fBm smooth-blend width at scale 1
}

// DefaultConfig returns the "default" profile.
func DefaultConfig() Config {
	return profiles["default"]
}

var profiles = map[string]Config{
	"default": {
		MaxSteps: 100, MaxDist: 100, SurfDist: 1e-4,
		NormalEps: 0.01, Octaves: 4, BlendK: 0.3,
	},
	"quality": {
		MaxSteps: 200, MaxDist: 100, SurfDist: 1e-5,
		NormalEps: 0.01, Octaves: 4, BlendK: 0.3,
	},
	"performance": {
		MaxSteps: 64, MaxDist: 50, SurfDist: 1e-3,
		NormalEps: 0.01, Octaves: 3, BlendK: 0.3,
	},
}

// Profile returns the named tuning profile.
func Profile(name string) (Config, error) {
	cfg, ok := profiles[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown profile %q, expected one of %v", name, ProfileNames())
	}
	return cfg, nil
}

// ProfileNames returns the known profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate rejects budgets that would make tracing meaningless.
func (c Config) Validate() error {
	switch {
	case c.MaxSteps <= 0:
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	case c.MaxDist <= 0:
		return fmt.Errorf("max_dist must be positive, got %g", c.MaxDist)
	case c.SurfDist <= 0:
		return fmt.Errorf("surf_dist must be positive, got %g", c.SurfDist)
	case c.SurfDist >= c.MaxDist:
		return fmt.Errorf("surf_dist (%g) must be smaller than max_dist (%g)", c.SurfDist, c.MaxDist)
	case c.NormalEps <= 0:
		return fmt.Errorf("normal_eps must be positive, got %g", c.NormalEps)
	case c.Octaves < 0:
		return fmt.Errorf("fbm_octaves must not be negative, got %d", c.Octaves)
	case c.BlendK < 0:
		return fmt.Errorf("blend_k must not be negative, got %g", c.BlendK)
	}
	return nil
}
