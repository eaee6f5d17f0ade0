package cli

import (
	"fmt"
	"io"

	"github.com/chazu/sdfvm/pkg/compile"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/spf13/cobra"
)

func newEvalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <scene.sdf>",
		Short: "Compile a scene and print its programs",
		Long: `Evaluate a scene and print the instruction program compiled for each
root, one instruction per line in evaluation order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			cr := newApp(cfg).Compile(src)
			if err := reportDiagnostics(cmd, cr.Errors, cr.Warnings); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(cr.Programs) == 0 {
				fmt.Fprintln(w, "(empty scene)")
				return nil
			}
			for i, res := range cr.Programs {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s (%dD, %d instructions, depth %d)\n", res.Name, res.Dim, res.Len(), res.Depth())
				printProgram(w, res)
			}
			return nil
		},
	}
}

func printProgram(w io.Writer, res *compile.Result) {
	if res.Dim == graph.Dim2 {
		for i, in := range res.Program2 {
			fmt.Fprintf(w, "  %3d  %s\n", i, in)
		}
		return
	}
	for i, in := range res.Program3 {
		fmt.Fprintf(w, "  %3d  %s\n", i, in)
	}
}
