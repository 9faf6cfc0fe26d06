package scanline

import "fmt"

// ChannelDepth is the number of bytes per pixel in a rendered row (RGBA8).
const ChannelDepth = 4

// RowRange is a half-open interval of row indices [Start, End) that one
// worker is responsible for.
type RowRange struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r RowRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no rows.
func (r RowRange) Empty() bool {
	return r.Len() == 0
}

// Contains reports whether row lies inside the range.
func (r RowRange) Contains(row int) bool {
	return row >= r.Start && row < r.End
}

// String returns the range in interval notation, e.g. "[0,3)".
func (r RowRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// RenderedRow is one row of pixels produced by a render unit.
// Pixels holds Width*ChannelDepth bytes in RGBA order.
type RenderedRow struct {
	Index  int
	Pixels []byte
}

// Dimensions is the size of a scene in pixels as declared by its render unit.
type Dimensions struct {
	Width  int
	Height int
}
