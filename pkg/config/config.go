// Package config loads sdfvm settings from layered sources.
//
// Precedence, lowest to highest: profile defaults, config file, SDFVM_
// environment variables, then command-line flags that were explicitly set.
package config

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/chazu/sdfvm/pkg/frame"
	"github.com/chazu/sdfvm/pkg/march"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SDFVM_"

// DefaultFiles are the config files searched in the working directory when
// no explicit path is given.
var DefaultFiles = []string{"sdfvm.yaml", "sdfvm.yml"}

// Config is the full set of tuning and output settings.
type Config struct {
	Profile string `koanf:"profile"`

	// Tracer budget, seeded from the profile.
	MaxSteps   int     `koanf:"max_steps"`
	MaxDist    float64 `koanf:"max_dist"`
	SurfDist   float64 `koanf:"surf_dist"`
	NormalEps  float64 `koanf:"normal_eps"`
	FBMOctaves int     `koanf:"fbm_octaves"`
	BlendK     float64 `koanf:"blend_k"`

	Width   int    `koanf:"width"`
	Height  int    `koanf:"height"`
	Workers int    `koanf:"workers"`
	Format  string `koanf:"format"`

	// Orbit camera angles are in degrees.
	Yaw        float64 `koanf:"yaw"`
	Pitch      float64 `koanf:"pitch"`
	CameraDist float64 `koanf:"camera_dist"`

	Slice  bool    `koanf:"slice"`
	SliceZ float64 `koanf:"slice_z"`
	Zoom   float64 `koanf:"zoom"`

	MeshCells int     `koanf:"mesh_cells"`
	MeshWrap  int     `koanf:"mesh_wrap"`
	Extrude   float64 `koanf:"extrude"`

	// Onion hollows scenes into shells of this thickness; 0 disables it.
	Onion float64 `koanf:"onion"`

	Verbose bool `koanf:"verbose"`

	// File is the config file that was read, empty when none was.
	File string `koanf:"-"`
}

// Defaults returns the settings used when nothing else is configured,
// seeded from the named march profile.
func Defaults(profile string) (map[string]any, error) {
	mc, err := march.Profile(profile)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"profile":     profile,
		"max_steps":   mc.MaxSteps,
		"max_dist":    mc.MaxDist,
		"surf_dist":   mc.SurfDist,
		"normal_eps":  mc.NormalEps,
		"fbm_octaves": mc.Octaves,
		"blend_k":     mc.BlendK,
		"width":       640,
		"height":      480,
		"workers":     0,
		"format":      "png",
		"yaw":         30.0,
		"pitch":       20.0,
		"camera_dist": 4.0,
		"slice":       false,
		"slice_z":     0.0,
		"zoom":        2.0,
		"mesh_cells":  200,
		"mesh_wrap":   0,
		"extrude":     0.2,
		"onion":       0.0,
		"verbose":     false,
	}, nil
}

// Load reads configuration from path (or a default file when path is
// empty), the environment and the changed flags in flags. The profile is
// resolved first so that its budget is the base every other layer
// overrides.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	path = findConfigFile(path)

	// First pass: only the profile name matters.
	k, err := load("default", path, flags)
	if err != nil {
		return nil, err
	}
	if profile := k.String("profile"); profile != "default" {
		if k, err = load(profile, path, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	return &cfg, nil
}

func load(profile, path string, flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")

	defaults, err := Defaults(profile)
	if err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// SDFVM_MAX_STEPS -> max_steps
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	return k, nil
}

// findConfigFile returns explicit when set, otherwise the first default
// file that exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate rejects settings that cannot produce output.
func (c *Config) Validate() error {
	if !slices.Contains(march.ProfileNames(), c.Profile) {
		return fmt.Errorf("unknown profile %q, expected one of %v", c.Profile, march.ProfileNames())
	}
	if err := c.March().Validate(); err != nil {
		return err
	}
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("frame size must be positive, got %dx%d", c.Width, c.Height)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case !slices.Contains(frame.Formats, strings.ToLower(c.Format)):
		return fmt.Errorf("unknown format %q, expected one of %v", c.Format, frame.Formats)
	case c.CameraDist <= 0:
		return fmt.Errorf("camera_dist must be positive, got %g", c.CameraDist)
	case c.Zoom <= 0:
		return fmt.Errorf("zoom must be positive, got %g", c.Zoom)
	case c.MeshCells <= 0:
		return fmt.Errorf("mesh_cells must be positive, got %d", c.MeshCells)
	case c.MeshWrap < 0:
		return fmt.Errorf("mesh_wrap must not be negative, got %d", c.MeshWrap)
	case c.Extrude <= 0:
		return fmt.Errorf("extrude must be positive, got %g", c.Extrude)
	case c.Onion < 0 || math.IsInf(c.Onion, 0) || math.IsNaN(c.Onion):
		return fmt.Errorf("onion must be a non-negative thickness, got %g", c.Onion)
	}
	return nil
}

// March returns the tracer budget.
func (c *Config) March() march.Config {
	return march.Config{
		MaxSteps:  c.MaxSteps,
		MaxDist:   c.MaxDist,
		SurfDist:  c.SurfDist,
		NormalEps: c.NormalEps,
		Octaves:   c.FBMOctaves,
		BlendK:    c.BlendK,
	}
}

// Camera returns the orbit camera, with angles converted to radians.
func (c *Config) Camera() frame.Orbit {
	return frame.Orbit{
		Yaw:   c.Yaw * math.Pi / 180,
		Pitch: c.Pitch * math.Pi / 180,
		Dist:  c.CameraDist,
	}
}

// SlicePlane returns the slice settings.
func (c *Config) SlicePlane() march.Slice {
	return march.Slice{Z: c.SliceZ, Enabled: c.Slice}
}
