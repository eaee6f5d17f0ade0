// Package cli provides the command-line interface for sdfvm.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chazu/sdfvm/pkg/config"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/march"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var Version = "0.1.0"

// configKey is used to store the loaded config in the command context.
type configKey struct{}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sdfvm",
		Short: "sdfvm - signed distance field scenes",
		Long: `sdfvm evaluates signed distance field scenes written in a small Lisp,
compiles them to stack programs and turns those into images or meshes.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			setupLogging(cmd, cfg.Verbose)
			if cfg.File != "" {
				logging.Logger().Debug("using config file", "path", cfg.File)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./sdfvm.yaml)")
	pf.String("profile", "", "tuning profile (default|quality|performance)")
	pf.Int("max-steps", 0, "ray march iteration budget")
	pf.Float64("max-dist", 0, "distance past which a ray diverges")
	pf.Float64("surf-dist", 0, "hit threshold")
	pf.Float64("normal-eps", 0, "normal estimation offset")
	pf.Int("fbm-octaves", 0, "terrain noise octaves")
	pf.Float64("blend-k", 0, "terrain smooth blend width")
	pf.Int("width", 0, "frame width in pixels")
	pf.Int("height", 0, "frame height in pixels")
	pf.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
	pf.String("format", "", "image format (png|jpeg|bmp|tiff)")
	pf.Float64("yaw", 0, "camera yaw in degrees")
	pf.Float64("pitch", 0, "camera pitch in degrees")
	pf.Float64("camera-dist", 0, "camera distance from the origin")
	pf.Bool("slice", false, "cut the scene at z = slice-z")
	pf.Float64("slice-z", 0, "slice plane position")
	pf.Float64("zoom", 0, "field-space height of 2D frames")
	pf.Int("mesh-cells", 0, "marching cubes resolution")
	pf.Int("mesh-wrap", 0, "shrink-wrap grid resolution for 3D meshes (0 = marching cubes)")
	pf.Float64("extrude", 0, "extrusion height for meshing 2D scenes")
	pf.Float64("onion", 0, "hollow scenes into shells of this thickness (0 = solid)")
	pf.BoolP("verbose", "v", false, "verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("profile", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return march.ProfileNames(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newEvalCommand())
	rootCmd.AddCommand(newMeshCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newTerrainCommand())
	rootCmd.AddCommand(newShapesCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}

// getConfig returns the config stored by the root command.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return nil
}
