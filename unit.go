package scanline

// RenderUnit is an opaque computation that produces pixel rows for a scene.
//
// A RenderUnit is created once per worker and is only ever called from that
// worker's goroutine, so implementations need not be safe for concurrent use.
// A unit that also implements io.Closer is closed on the worker goroutine
// when its proxy is disposed.
type RenderUnit interface {
	// Dimensions returns the size of the scene in pixels.
	Dimensions() Dimensions

	// RenderRow computes row y and returns Width*ChannelDepth RGBA bytes.
	RenderRow(y int) ([]byte, error)
}

// UnitFactory builds a RenderUnit from a serialized scene description.
// It returns an error if the description is malformed.
type UnitFactory func(sceneInput string) (RenderUnit, error)
