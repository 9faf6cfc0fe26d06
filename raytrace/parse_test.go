package raytrace

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const minimalScene = `
- add: camera
  width: 20
  height: 10
- add: light
  at: [-10, 10, -10]
  intensity: [1, 1, 1]
`

func TestParse_Defaults(t *testing.T) {
	scene, err := Parse(`
- add: camera
- add: light
- add: sphere
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c := scene.Camera
	if c.Width != defaultWidth || c.Height != defaultHeight {
		t.Errorf("camera size = %dx%d, want %dx%d", c.Width, c.Height, defaultWidth, defaultHeight)
	}
	if c.FieldOfView != math.Pi/4 {
		t.Errorf("FieldOfView = %v, want pi/4", c.FieldOfView)
	}

	l := scene.World.Lights[0]
	if l.Position != defaultFrom || l.Intensity != White {
		t.Errorf("light = %+v, want default position and white", l)
	}

	o := scene.World.Objects[0]
	if o.Material != DefaultMaterial() {
		t.Errorf("material = %+v, want default", o.Material)
	}
	if o.Transform() != Identity() {
		t.Errorf("transform = %v, want identity", o.Transform())
	}
}

func TestParse_Camera(t *testing.T) {
	scene, err := Parse(`
- add: camera
  width: 100
  height: 50
  field-of-view: 0.785
  from: [0, 1.5, -5]
  to: [0, 1, 0]
  up: [0, 1, 0]
- add: light
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c := scene.Camera
	if c.Width != 100 || c.Height != 50 || c.FieldOfView != 0.785 {
		t.Errorf("camera = %dx%d fov %v", c.Width, c.Height, c.FieldOfView)
	}

	want := ViewTransform(V3(0, 1.5, -5), V3(0, 1, 0), V3(0, 1, 0))
	inv, _ := want.Invert()
	if !c.inverse.Approx(inv, Epsilon) {
		t.Error("camera view transform not applied")
	}
}

func TestParse_Definitions(t *testing.T) {
	scene, err := Parse(minimalScene + `
- define: white-material
  value:
    color: [1, 1, 1]
    diffuse: 0.7
    ambient: 0.1
    specular: 0.0
    reflective: 0.1
- define: blue-material
  extend: white-material
  value:
    color: [0.537, 0.831, 0.914]
- define: standard-transform
  value:
    - [translate, 1, -1, 1]
    - [scale, 0.5, 0.5, 0.5]
- define: large-object
  value:
    - standard-transform
    - [scale, 3.5, 3.5, 3.5]
- add: cube
  material: blue-material
  transform:
    - large-object
    - [translate, 8.5, 1.5, -0.5]
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	o := scene.World.Objects[0]
	if _, ok := o.Geometry.(Cube); !ok {
		t.Errorf("Geometry = %T, want Cube", o.Geometry)
	}

	m := o.Material
	if m.Color != RGB(0.537, 0.831, 0.914) {
		t.Errorf("Color = %v, want extended override", m.Color)
	}
	if m.Diffuse != 0.7 || m.Specular != 0 || m.Reflective != 0.1 {
		t.Errorf("material = %+v, want values inherited from white-material", m)
	}
	if m.Shininess != DefaultMaterial().Shininess {
		t.Errorf("Shininess = %v, want default", m.Shininess)
	}

	want := Translation(8.5, 1.5, -0.5).
		Multiply(Scaling(3.5, 3.5, 3.5)).
		Multiply(Scaling(0.5, 0.5, 0.5)).
		Multiply(Translation(1, -1, 1))
	if !o.Transform().Approx(want, Epsilon) {
		t.Errorf("Transform() = %v, want %v", o.Transform(), want)
	}
}

func TestParse_Objects(t *testing.T) {
	scene, err := Parse(minimalScene + `
- add: plane
  material:
    color: [1, 0.9, 0.9]
    specular: 0
- add: sphere
  transform:
    - [rotate-x, 1.5707963]
    - [rotate-y, 0.5]
    - [rotate-z, 0.25]
    - [shear, 0, 0, 0, 0, 0, 0]
- add: cube
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if n := len(scene.World.Objects); n != 3 {
		t.Fatalf("objects = %d, want 3", n)
	}
	if _, ok := scene.World.Objects[0].Geometry.(Plane); !ok {
		t.Errorf("first object = %T, want Plane", scene.World.Objects[0].Geometry)
	}
	if _, ok := scene.World.Objects[1].Geometry.(Sphere); !ok {
		t.Errorf("second object = %T, want Sphere", scene.World.Objects[1].Geometry)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
		msg  string
	}{
		{"no camera", "- add: light\n", ErrNoCamera, ""},
		{"no light", "- add: camera\n", ErrNoLight, ""},
		{"empty", "", nil, "empty scene"},
		{"not a list", "add: camera\n", nil, "expected a list"},
		{"unknown type", minimalScene + "- add: torus\n", nil, `unsupported type "torus"`},
		{"color out of range", minimalScene + "- add: sphere\n  material:\n    color: [2, 0, 0]\n", nil, "within [0, 1]"},
		{"bad number", minimalScene + "- add: sphere\n  material:\n    diffuse: lots\n", nil, "expected a number"},
		{"negative width", "- add: camera\n  width: -3\n- add: light\n", nil, "must not be negative"},
		{"short vector", "- add: camera\n  from: [1, 2]\n- add: light\n", nil, "list of 3 numbers"},
		{"unknown definition", minimalScene + "- add: sphere\n  material: missing\n", nil, `"missing" not found`},
		{"unknown transform", minimalScene + "- add: sphere\n  transform:\n    - [twist, 1]\n", nil, `unknown transform "twist"`},
		{"wrong arity", minimalScene + "- add: sphere\n  transform:\n    - [translate, 1]\n", nil, "takes 3 arguments"},
		{"singular transform", minimalScene + "- add: sphere\n  transform:\n    - [scale, 0, 1, 1]\n", nil, "singular"},
		{"definition without value", minimalScene + "- define: x\n", nil, "has no value"},
		{"transform is not a list", minimalScene + "- add: sphere\n  transform: big\n", nil, "must be a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("Parse() error = %v, want %v", err, tt.want)
				}
				return
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %T %v, want *ParseError", err, err)
			}
			if !strings.Contains(pe.Msg, tt.msg) {
				t.Errorf("ParseError.Msg = %q, want it to contain %q", pe.Msg, tt.msg)
			}
		})
	}
}

func TestParse_ErrorLine(t *testing.T) {
	_, err := Parse(minimalScene + "- add: torus\n")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	// minimalScene starts with a newline, so the torus entry is on line 8.
	if pe.Line != 8 {
		t.Errorf("Line = %d, want 8", pe.Line)
	}
	if !strings.HasPrefix(err.Error(), "raytrace: line 8:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse("- add: [camera\n"); err == nil {
		t.Error("Parse() accepted malformed YAML")
	}
}
