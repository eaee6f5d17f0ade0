package cli

import (
	"fmt"

	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/spf13/cobra"
)

func newRenderCommand() *cobra.Command {
	var out, probe string

	cmd := &cobra.Command{
		Use:   "render <scene.sdf>",
		Short: "Ray-march a scene to an image",
		Long: `Evaluate a scene and ray-march it from the orbit camera. 2D scenes are
sampled directly and shaded with distance bands. Use "-" to read the
scene from stdin or to write the image to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			opts := renderOptions(cfg)
			if probe != "" {
				p, err := parseVec3(probe)
				if err != nil {
					return fmt.Errorf("--probe: %w", err)
				}
				opts.Probe = &p
			}

			res, err := newApp(cfg).Render(cmd.Context(), src, opts)
			if err != nil {
				return err
			}
			if err := reportDiagnostics(cmd, res.Errors, res.Warnings); err != nil {
				return err
			}

			format := outputFormat(out, cfg.Format)
			if err := writeImage(cmd, out, res.Image, format); err != nil {
				return err
			}
			if out != "-" {
				logging.Logger().Info("image written", "path", out, "format", format,
					"width", cfg.Width, "height", cfg.Height)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "scene.png", "output image path")
	cmd.Flags().StringVar(&probe, "probe", "", "probe center as x,y,z")
	return cmd
}
