// Package imageio encodes rendered surfaces to image files.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image encoding.
type Format int

// Supported formats.
const (
	None Format = iota
	PNG
	BMP
	TIFF
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return "none"
	}
}

// ErrUnknownFormat is returned for file extensions with no encoder.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// FormatFor returns the Format for a file name or extension.
func FormatFor(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = name
	}
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Encode writes im to w in format f.
func Encode(w io.Writer, im image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, im)
	case BMP:
		return bmp.Encode(w, im)
	case TIFF:
		return tiff.Encode(w, im, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Save writes im to path, choosing the format from the file extension.
func Save(im image.Image, path string) (err error) {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Encode(bw, im, f); err != nil {
		return err
	}
	return bw.Flush()
}
