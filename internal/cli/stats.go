package cli

import (
	"fmt"
	"io"

	"github.com/chazu/sdfvm/pkg/app"
	"github.com/chazu/sdfvm/pkg/frame"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <scene.sdf>",
		Short: "Report program sizes and ray termination counts",
		Long: `Compile a scene, print the size of each root program, then trace one
frame with the configured camera and budget and tabulate how the rays
terminated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			a := newApp(cfg)
			cr := a.Compile(src)
			if err := reportDiagnostics(cmd, cr.Errors, cr.Warnings); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			renderProgramTable(w, cr)

			res, err := a.Render(cmd.Context(), src, renderOptions(cfg))
			if err != nil {
				return err
			}
			if res.Stats == nil {
				fmt.Fprintln(w, "(2D scene: no ray statistics)")
				return nil
			}
			renderStatsTable(w, *res.Stats)
			return nil
		},
	}
}

func renderProgramTable(w io.Writer, cr app.CompileResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Root", "Dim", "Instructions", "Stack depth"})
	for _, res := range cr.Programs {
		t.AppendRow(table.Row{res.Name, fmt.Sprintf("%dD", res.Dim), res.Len(), res.Depth()})
	}
	if len(cr.Programs) == 0 {
		t.AppendRow(table.Row{"(empty)", "-", 0, 0})
	}
	t.Render()
}

func renderStatsTable(w io.Writer, st frame.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Samples", st.Samples},
		{"Hits", st.Hits},
		{"Probe hits", st.ProbeHits},
		{"Divergent", st.Divergent},
		{"Budget exhausted", st.BudgetExhausted},
		{"Mean steps", fmt.Sprintf("%.2f", st.MeanSteps())},
		{"Max steps", st.MaxSteps},
		{"Hit rate", fmt.Sprintf("%.1f%%", 100*st.HitRate())},
	})
	t.Render()
}
