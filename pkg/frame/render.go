package frame

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/sdfvm/pkg/logging"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"golang.org/x/sync/errgroup"
)

// Frame is a rendered grid of samples in row-major order.
type Frame struct {
	Width, Height int
	Samples       []Sample
}

// At returns the sample for pixel (x, y).
func (f *Frame) At(x, y int) Sample {
	return f.Samples[y*f.Width+x]
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", w, h)
	}
	return nil
}

func workerLimit(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// Render traces every pixel of a w×h frame. Rows are distributed over at
// most workers goroutines (GOMAXPROCS when workers <= 0). Samples share
// nothing, so the result does not depend on the worker count.
func Render(ctx context.Context, w, h int, cam Camera, tr Tracer, workers int) (*Frame, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	f := &Frame{Width: w, Height: h, Samples: make([]Sample, w*h)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(workers))
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := f.Samples[y*w : (y+1)*w]
			for x := range row {
				ro, rd := cam.Ray(float64(x)+0.5, float64(y)+0.5, w, h)
				row[x] = tr.Trace(ro, rd)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	logging.Logger().Debug("frame rendered", "width", w, "height", h)
	return f, nil
}

// Field2 is a 2D signed distance field. sdfx's sdf.SDF2 satisfies it.
type Field2 interface {
	Evaluate(p v2.Vec) float64
}

// Frame2 is a grid of raw 2D field values in row-major order.
type Frame2 struct {
	Width, Height int
	Distances     []float64
}

func (f *Frame2) At(x, y int) float64 {
	return f.Distances[y*f.Width+x]
}

// Render2 samples f over a w×h frame. zoom is the field-space height of the
// frame.
func Render2(ctx context.Context, w, h int, f Field2, zoom float64, workers int) (*Frame2, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if zoom <= 0 {
		zoom = 1
	}
	out := &Frame2{Width: w, Height: h, Distances: make([]float64, w*h)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(workers))
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := out.Distances[y*w : (y+1)*w]
			for x := range row {
				row[x] = f.Evaluate(UV(float64(x)+0.5, float64(y)+0.5, w, h).MulScalar(zoom))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render2: %w", err)
	}
	return out, nil
}
