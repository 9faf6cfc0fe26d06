package raytrace

import (
	"fmt"

	"github.com/gogpu/scanline"
)

// Unit renders a parsed scene one row at a time. It implements
// scanline.RenderUnit.
type Unit struct {
	scene *Scene
	depth int
}

var _ scanline.RenderUnit = (*Unit)(nil)

// New parses sceneInput and returns a unit ready to render it.
func New(sceneInput string) (*Unit, error) {
	scene, err := Parse(sceneInput)
	if err != nil {
		return nil, err
	}
	return &Unit{scene: scene, depth: MaxDepth}, nil
}

// Factory is a scanline.UnitFactory building a Unit per worker.
func Factory(sceneInput string) (scanline.RenderUnit, error) {
	u, err := New(sceneInput)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Scene returns the parsed scene.
func (u *Unit) Scene() *Scene {
	return u.scene
}

// Dimensions implements scanline.RenderUnit.
func (u *Unit) Dimensions() scanline.Dimensions {
	return scanline.Dimensions{Width: u.scene.Camera.Width, Height: u.scene.Camera.Height}
}

// RenderRow implements scanline.RenderUnit.
func (u *Unit) RenderRow(y int) ([]byte, error) {
	c := u.scene.Camera
	if y < 0 || y >= c.Height {
		return nil, fmt.Errorf("raytrace: row %d outside image of height %d", y, c.Height)
	}

	row := make([]byte, c.Width*scanline.ChannelDepth)
	for x := 0; x < c.Width; x++ {
		col := u.scene.World.ColorAt(c.RayForPixel(x, y), u.depth)
		col.putRGBA(row[x*scanline.ChannelDepth:])
	}
	return row, nil
}
