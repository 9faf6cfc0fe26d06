package raytrace

import "math"

// Camera maps image pixels to world-space rays.
type Camera struct {
	Width       int
	Height      int
	FieldOfView float64

	inverse    Matrix
	pixelSize  float64
	halfWidth  float64
	halfHeight float64
}

// NewCamera creates a camera with the given image size, horizontal field of
// view (radians) and view transform. It returns false if the transform is
// singular.
func NewCamera(width, height int, fov float64, view Matrix) (*Camera, bool) {
	inv, ok := view.Invert()
	if !ok {
		return nil, false
	}

	c := &Camera{Width: width, Height: height, FieldOfView: fov, inverse: inv}

	halfView := math.Tan(fov / 2)
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	if aspect >= 1 {
		c.halfWidth, c.halfHeight = halfView, halfView/aspect
	} else {
		c.halfWidth, c.halfHeight = halfView*aspect, halfView
	}
	if width > 0 {
		c.pixelSize = c.halfWidth * 2 / float64(width)
	}
	return c, true
}

// PixelSize returns the world-space size of one pixel on the canvas plane.
func (c *Camera) PixelSize() float64 {
	return c.pixelSize
}

// RayForPixel returns the ray through the center of pixel (px, py).
func (c *Camera) RayForPixel(px, py int) Ray {
	xoff := (float64(px) + 0.5) * c.pixelSize
	yoff := (float64(py) + 0.5) * c.pixelSize

	worldX := c.halfWidth - xoff
	worldY := c.halfHeight - yoff

	pixel := c.inverse.MulPoint(Vec3{X: worldX, Y: worldY, Z: -1})
	origin := c.inverse.MulPoint(Vec3{})
	return Ray{Origin: origin, Direction: pixel.Sub(origin).Normalize()}
}
