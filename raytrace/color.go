package raytrace

// Color is a linear RGB color. Components are nominally in [0, 1] but may
// exceed 1 while light is accumulated.
type Color struct {
	R, G, B float64
}

// Common colors.
var (
	Black = Color{}
	White = Color{R: 1, G: 1, B: 1}
)

// RGB creates a color from its components.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Add returns the component-wise sum.
func (c Color) Add(d Color) Color {
	return Color{R: c.R + d.R, G: c.G + d.G, B: c.B + d.B}
}

// Scale returns the color multiplied by s.
func (c Color) Scale(s float64) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Blend returns the component-wise (Hadamard) product.
func (c Color) Blend(d Color) Color {
	return Color{R: c.R * d.R, G: c.G * d.G, B: c.B * d.B}
}

// base255 maps a [0, 1] channel to 0..255: negatives become 0 and values at
// or above 1 saturate at 255.
func base255(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		v := int(f * 256)
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
}

// putRGBA writes c as four RGBA8 bytes with opaque alpha.
func (c Color) putRGBA(dst []byte) {
	dst[0] = base255(c.R)
	dst[1] = base255(c.G)
	dst[2] = base255(c.B)
	dst[3] = 255
}
