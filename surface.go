package scanline

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync/atomic"
)

// Row write states.
const (
	rowFree int32 = iota
	rowClaimed
	rowWritten
)

// Surface is the shared output pixel buffer that accumulates rendered rows.
//
// Pixels are stored as RGBA8, ChannelDepth bytes per pixel, rows top to
// bottom. Rows occupy disjoint byte ranges, so WriteRow may be called
// concurrently for different rows without a lock. Each row may be written at
// most once between two calls to Resize.
//
// Thread safety: WriteRow, Row, Written and RowsWritten are safe for
// concurrent use. Resize must not run concurrently with any other method.
type Surface struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel

	// rows holds the write state of each row.
	rows  []atomic.Int32
	count atomic.Int64
}

// NewSurface creates a new surface with the given dimensions.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

// Resize reallocates the surface to width x height. All pixels are cleared
// to transparent black and every row becomes writable again.
// Negative dimensions are treated as zero.
func (s *Surface) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)

	s.width = width
	s.height = height
	s.data = make([]uint8, width*height*ChannelDepth)
	s.rows = make([]atomic.Int32, height)
	s.count.Store(0)
}

// Width returns the width of the surface.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the height of the surface.
func (s *Surface) Height() int {
	return s.height
}

// Stride returns the number of bytes in one row.
func (s *Surface) Stride() int {
	return s.width * ChannelDepth
}

// Data returns the raw pixel data (RGBA format).
func (s *Surface) Data() []uint8 {
	return s.data
}

// WriteRow copies pixels into row y.
//
// It returns an error wrapping ErrRowBounds if y is outside the surface,
// ErrRowLength if pixels is not exactly one row long, and ErrRowRewritten if
// row y was already written. The copy completes before Written(y) reports
// true.
func (s *Surface) WriteRow(y int, pixels []byte) error {
	if y < 0 || y >= s.height {
		return fmt.Errorf("%w: row %d, height %d", ErrRowBounds, y, s.height)
	}
	stride := s.Stride()
	if len(pixels) != stride {
		return fmt.Errorf("%w: row %d has %d bytes, want %d", ErrRowLength, y, len(pixels), stride)
	}
	// Claim the row before copying so a second writer can never overlap.
	if !s.rows[y].CompareAndSwap(rowFree, rowClaimed) {
		return fmt.Errorf("%w: row %d", ErrRowRewritten, y)
	}

	copy(s.data[y*stride:(y+1)*stride], pixels)
	s.rows[y].Store(rowWritten)
	s.count.Add(1)
	return nil
}

// Row returns the bytes of row y. The slice aliases the surface memory.
// It returns nil if y is outside the surface.
func (s *Surface) Row(y int) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	stride := s.Stride()
	return s.data[y*stride : (y+1)*stride]
}

// Written reports whether row y has been written since the last Resize.
func (s *Surface) Written(y int) bool {
	if y < 0 || y >= s.height {
		return false
	}
	return s.rows[y].Load() == rowWritten
}

// RowsWritten returns the number of rows written since the last Resize.
func (s *Surface) RowsWritten() int {
	return int(s.count.Load())
}

// ToImage converts the surface to an image.RGBA.
func (s *Surface) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.data)
	return img
}

// SavePNG saves the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, s.ToImage())
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return color.RGBA{}
	}
	i := (y*s.width + x) * ChannelDepth
	return color.RGBA{R: s.data[i+0], G: s.data[i+1], B: s.data[i+2], A: s.data[i+3]}
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.RGBAModel
}
