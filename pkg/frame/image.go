package frame

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats lists the image encodings accepted by Encode.
var Formats = []string{"png", "jpeg", "bmp", "tiff"}

// Image shades every sample of f.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, Shade(f.At(x, y)))
		}
	}
	return img
}

// Image shades every distance of f.
func (f *Frame2) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, Shade2(f.At(x, y)))
		}
	}
	return img
}

// FormatFromPath infers the image format from a file extension, falling
// back to png.
func FormatFromPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "png"
	}
	switch ext := strings.ToLower(path[i+1:]); ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "bmp", "tiff", "png":
		return ext
	case "tif":
		return "tiff"
	}
	return "png"
}

// Encode writes img to w in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "", "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 92})
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unknown image format %q, expected one of %v", format, Formats)
}
