package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/sdfvm/pkg/march"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("profile", "", "")
	fs.Int("max-steps", 0, "")
	fs.Int("width", 0, "")
	fs.String("format", "", "")
	fs.Float64("slice-z", 0, "")
	return fs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, march.DefaultConfig(), cfg.March())
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 480, cfg.Height)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, 200, cfg.MeshCells)
	assert.Zero(t, cfg.Onion)
	assert.Empty(t, cfg.File)
	require.NoError(t, cfg.Validate())
}

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		want    march.Config
	}{
		{"quality", "quality", march.Config{MaxSteps: 200, MaxDist: 100, SurfDist: 1e-5, NormalEps: 0.01, Octaves: 4, BlendK: 0.3}},
		{"performance", "performance", march.Config{MaxSteps: 64, MaxDist: 50, SurfDist: 1e-3, NormalEps: 0.01, Octaves: 3, BlendK: 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			fs := newFlags(t)
			require.NoError(t, fs.Parse([]string{"--profile", tt.profile}))

			cfg, err := Load("", fs)
			require.NoError(t, err)
			assert.Equal(t, tt.profile, cfg.Profile)
			assert.Equal(t, tt.want, cfg.March())
		})
	}
}

func TestLoadUnknownProfile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SDFVM_PROFILE", "turbo")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "sdfvm.yaml", `
profile: performance
max_steps: 80
width: 320
format: bmp
`)

	// The file is found without an explicit path and its profile seeds
	// the budget that its own max_steps then overrides.
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sdfvm.yaml", cfg.File)
	assert.Equal(t, 80, cfg.MaxSteps)
	assert.Equal(t, 50.0, cfg.MaxDist)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, "bmp", cfg.Format)

	// Environment beats the file.
	t.Setenv("SDFVM_WIDTH", "200")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)

	// Changed flags beat the environment; unchanged flags are ignored.
	fs := newFlags(t)
	require.NoError(t, fs.Parse([]string{"--width", "100", "--slice-z", "0.25"}))
	cfg, err = Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 0.25, cfg.SliceZ)
	assert.Equal(t, 80, cfg.MaxSteps)
	assert.Equal(t, "bmp", cfg.Format)
}

func TestLoadExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, t.TempDir(), "render.yml", "height: 90\nslice: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 90, cfg.Height)
	assert.True(t, cfg.SlicePlane().Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		return cfg
	}
	t.Chdir(t.TempDir())

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero width", func(c *Config) { c.Width = 0 }, "frame size"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"bad format", func(c *Config) { c.Format = "gif" }, "unknown format"},
		{"uppercase format", func(c *Config) { c.Format = "PNG" }, ""},
		{"zero steps", func(c *Config) { c.MaxSteps = 0 }, "max_steps"},
		{"surf past max", func(c *Config) { c.SurfDist = 200 }, "surf_dist"},
		{"camera", func(c *Config) { c.CameraDist = 0 }, "camera_dist"},
		{"zoom", func(c *Config) { c.Zoom = -1 }, "zoom"},
		{"mesh cells", func(c *Config) { c.MeshCells = 0 }, "mesh_cells"},
		{"mesh wrap", func(c *Config) { c.MeshWrap = -2 }, "mesh_wrap"},
		{"extrude", func(c *Config) { c.Extrude = 0 }, "extrude"},
		{"onion", func(c *Config) { c.Onion = -0.1 }, "onion"},
		{"onion shell", func(c *Config) { c.Onion = 0.05 }, ""},
		{"profile", func(c *Config) { c.Profile = "x" }, "unknown profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestCamera(t *testing.T) {
	cfg := &Config{Yaw: 90, Pitch: -45, CameraDist: 3}
	cam := cfg.Camera()
	assert.InDelta(t, math.Pi/2, cam.Yaw, 1e-12)
	assert.InDelta(t, -math.Pi/4, cam.Pitch, 1e-12)
	assert.Equal(t, 3.0, cam.Dist)
}
