package cli

import (
	"github.com/chazu/sdfvm/pkg/frame"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/march"
	"github.com/spf13/cobra"
)

func newTerrainCommand() *cobra.Command {
	var (
		out  string
		time float64
	)

	cmd := &cobra.Command{
		Use:   "terrain",
		Short: "Render the procedural fBm terrain",
		Long: `Ray-march a ground plane roughened by fBm noise from a camera flying over
it. --time moves the camera along the terrain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			mc := cfg.March()
			ground := march.NewTerrain(mc)
			cam := frame.FlyOver(time, ground.Evaluate)

			f, err := frame.Render(cmd.Context(), cfg.Width, cfg.Height, cam,
				frame.Scene3{Field: ground, Config: mc}, cfg.Workers)
			if err != nil {
				return err
			}
			format := outputFormat(out, cfg.Format)
			if err := writeImage(cmd, out, f.Image(), format); err != nil {
				return err
			}
			if out != "-" {
				st := f.Stats()
				logging.Logger().Info("terrain written", "path", out, "format", format,
					"hit_rate", st.HitRate(), "mean_steps", st.MeanSteps())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "terrain.png", "output image path")
	cmd.Flags().Float64Var(&time, "time", 0, "fly-over time")
	return cmd
}
