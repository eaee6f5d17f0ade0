package cli

import (
	"encoding/json"
	"os"

	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/spf13/cobra"
)

func newMeshCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "mesh <scene.sdf>",
		Short: "Tessellate each scene root to JSON meshes",
		Long: `Evaluate a scene and run marching cubes over every root. 2D scenes are
extruded first. The output is the same JSON a frontend receives: meshes
with vertices, normals, indices, name and color, plus errors and warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			result := newApp(cfg).Evaluate(src)

			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			if err := enc.Encode(result); err != nil {
				return err
			}
			if out != "-" {
				logging.Logger().Info("meshes written", "path", out, "meshes", len(result.Meshes))
			}
			return reportDiagnostics(cmd, result.Errors, result.Warnings)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "output JSON path")
	return cmd
}
