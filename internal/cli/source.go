package cli

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/sdfvm/pkg/app"
	"github.com/chazu/sdfvm/pkg/config"
	"github.com/chazu/sdfvm/pkg/frame"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/spf13/cobra"
)

// readSource reads scene source from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func newApp(cfg *config.Config) *app.App {
	return app.New(app.Options{
		Cells:   cfg.MeshCells,
		Extrude: cfg.Extrude,
		Workers: cfg.Workers,
		Wrap:    cfg.MeshWrap,
		March:   cfg.March(),
		Onion:   cfg.Onion,
	})
}

func renderOptions(cfg *config.Config) app.RenderOptions {
	return app.RenderOptions{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Workers: cfg.Workers,
		Camera:  cfg.Camera(),
		March:   cfg.March(),
		Slice:   cfg.SlicePlane(),
		Zoom:    cfg.Zoom,
	}
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (v3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var xyz [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v3.Vec{}, fmt.Errorf("bad component %q: %w", p, err)
		}
		xyz[i] = f
	}
	return v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// reportDiagnostics writes errors and warnings to stderr and returns an
// error when there was at least one error.
func reportDiagnostics(cmd *cobra.Command, errs, warnings []app.EvalErrorData) error {
	w := cmd.ErrOrStderr()
	for _, d := range warnings {
		fmt.Fprintf(w, "warning: %s\n", position(d))
	}
	for _, d := range errs {
		fmt.Fprintf(w, "error: %s\n", position(d))
	}
	if len(errs) > 0 {
		return fmt.Errorf("scene has %d error(s)", len(errs))
	}
	return nil
}

func position(d app.EvalErrorData) string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", d.Line, d.Col, d.Message)
	}
	return d.Message
}

// outputFormat picks the image format: a recognized extension on out wins
// over the configured format.
func outputFormat(out, configured string) string {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return frame.FormatFromPath(out)
	}
	return strings.ToLower(configured)
}

// writeImage encodes the image to out, or to stdout when out is "-".
func writeImage(cmd *cobra.Command, out string, img image.Image, format string) error {
	if out == "-" {
		return frame.Encode(cmd.OutOrStdout(), img, format)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := frame.Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
