// Package generator encodes rendered posters for download and storage.
//
// All output follows one pipeline: the poster is rendered to an image.Image
// first, then written as a still image (PNG, JPEG, BMP) or containerised as
// a short MJPEG AVI clip for status and story uploads.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatAVI  Format = "avi"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatAVI:
		return "video/x-msvideo"
	default:
		return "image/png"
	}
}

// FormatFromExt maps a file extension (".png", "jpg", ...) to a Format.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "avi":
		return FormatAVI, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use .png, .jpg, .bmp or .avi", ext)
	}
}

// Config holds encoding parameters.
type Config struct {
	Format   Format // Output format (default: png)
	Quality  int    // JPEG quality for JPEG and AVI frames (default: 95)
	Duration int    // Seconds, AVI only (default: 3)
}

func (c Config) withDefaults() Config {
	if c.Format == "" {
		c.Format = FormatPNG
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = 95
	}
	if c.Duration < 1 {
		c.Duration = 3
	}
	return c
}

// Encode writes img to w in the configured format.
func Encode(w io.Writer, img image.Image, cfg Config) error {
	if img == nil {
		return fmt.Errorf("encode: nil image")
	}
	cfg = cfg.withDefaults()

	var err error
	switch cfg.Format {
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(cfg.Quality))
	case FormatBMP:
		err = imaging.Encode(w, img, imaging.BMP)
	case FormatAVI:
		err = writeAVI(w, img, cfg.Duration, cfg.Quality)
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", cfg.Format, err)
	}
	return nil
}

// WriteFile creates output and encodes img into it. The format is inferred
// from the file extension:
//   - ".png" → PNG image
//   - ".jpg", ".jpeg" → JPEG image
//   - ".bmp" → BMP image
//   - ".avi" → MJPEG AVI video
func WriteFile(output string, img image.Image, cfg Config) error {
	format, err := FormatFromExt(filepath.Ext(output))
	if err != nil {
		return err
	}
	cfg.Format = format

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := Encode(f, img, cfg); err != nil {
		return err
	}
	return f.Sync()
}
