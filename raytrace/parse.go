package raytrace

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for scene parsing.
var (
	// ErrNoCamera is returned when a scene adds no camera.
	ErrNoCamera = errors.New("raytrace: scene must add a camera")

	// ErrNoLight is returned when a scene adds no light.
	ErrNoLight = errors.New("raytrace: scene must add at least one light")
)

// ParseError reports a malformed scene entry.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("raytrace: line %d: %s", e.Line, e.Msg)
}

// Camera defaults, applied to keys a scene leaves out.
var (
	defaultFrom = V3(-6, 6, -10)
	defaultTo   = V3(6, 0, 6)
	defaultUp   = V3(-0.45, 1, 0)
)

const (
	defaultWidth  = 200
	defaultHeight = 100

	// maxDefineDepth bounds nested transform references.
	maxDefineDepth = 16
)

// Scene is a parsed scene description.
type Scene struct {
	Camera *Camera
	World  World
}

// Parse reads a YAML scene description.
//
// The document is a list of entries. Entries with "add" place a camera,
// light, sphere, plane or cube. Entries with "define" name a material map or
// a transform list for later entries; a material definition may "extend" an
// earlier one, overriding its keys. Transform steps are applied in order:
//
//	# a half-size white sphere resting on the floor
//	- define: white-material
//	  value:
//	    color: [1, 1, 1]
//	    diffuse: 0.7
//	- add: sphere
//	  material: white-material
//	  transform:
//	    - [scale, 0.5, 0.5, 0.5]
//	    - [translate, 1, 0.5, 0]
func Parse(src string) (*Scene, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("raytrace: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{Line: 1, Msg: "empty scene"}
	}

	root := deref(doc.Content[0])
	if root.Kind != yaml.SequenceNode {
		return nil, errorf(root, "expected a list of scene entries")
	}

	p := &parser{defs: make(map[string]*yaml.Node)}
	for _, item := range root.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			return nil, errorf(item, "expected a mapping")
		}
		if name := lookup(item, "define"); name != nil {
			if err := p.define(item, name); err != nil {
				return nil, err
			}
		}
	}

	scene := &Scene{}
	for _, item := range root.Content {
		item = deref(item)
		add := lookup(item, "add")
		if add == nil {
			continue
		}
		if err := p.add(scene, item, add); err != nil {
			return nil, err
		}
	}

	if scene.Camera == nil {
		return nil, ErrNoCamera
	}
	if len(scene.World.Lights) == 0 {
		return nil, ErrNoLight
	}
	return scene, nil
}

type parser struct {
	defs map[string]*yaml.Node
}

func (p *parser) define(item, name *yaml.Node) error {
	if name.Kind != yaml.ScalarNode || name.Value == "" {
		return errorf(name, "definition name must be a string")
	}
	value := lookup(item, "value")
	if value == nil {
		return errorf(item, "definition %q has no value", name.Value)
	}

	if extend := lookup(item, "extend"); extend != nil {
		parent, err := p.mapping(extend)
		if err != nil {
			return err
		}
		if value.Kind != yaml.MappingNode {
			return errorf(value, "definition %q extends %q but is not a mapping", name.Value, extend.Value)
		}
		value = merge(parent, value)
	}

	p.defs[name.Value] = value
	return nil
}

func (p *parser) add(scene *Scene, item, add *yaml.Node) error {
	switch add.Value {
	case "camera":
		c, err := p.camera(item)
		if err != nil {
			return err
		}
		scene.Camera = c
	case "light":
		l, err := p.light(item)
		if err != nil {
			return err
		}
		scene.World.Lights = append(scene.World.Lights, l)
	case "sphere", "plane", "cube":
		o, err := p.object(item, add)
		if err != nil {
			return err
		}
		scene.World.Objects = append(scene.World.Objects, o)
	default:
		return errorf(add, "unsupported type %q", add.Value)
	}
	return nil
}

func (p *parser) camera(item *yaml.Node) (*Camera, error) {
	width, err := p.intOr(item, "width", defaultWidth)
	if err != nil {
		return nil, err
	}
	height, err := p.intOr(item, "height", defaultHeight)
	if err != nil {
		return nil, err
	}
	fov, err := p.floatOr(item, "field-of-view", math.Pi/4)
	if err != nil {
		return nil, err
	}
	from, err := p.vecOr(item, "from", defaultFrom)
	if err != nil {
		return nil, err
	}
	to, err := p.vecOr(item, "to", defaultTo)
	if err != nil {
		return nil, err
	}
	up, err := p.vecOr(item, "up", defaultUp)
	if err != nil {
		return nil, err
	}

	c, ok := NewCamera(width, height, fov, ViewTransform(from, to, up))
	if !ok {
		return nil, errorf(item, "camera view transform is singular")
	}
	return c, nil
}

func (p *parser) light(item *yaml.Node) (Light, error) {
	at, err := p.vecOr(item, "at", defaultFrom)
	if err != nil {
		return Light{}, err
	}
	intensity, err := p.colorOr(item, "intensity", White)
	if err != nil {
		return Light{}, err
	}
	return Light{Position: at, Intensity: intensity}, nil
}

func (p *parser) object(item, add *yaml.Node) (*Object, error) {
	var g Geometry
	switch add.Value {
	case "sphere":
		g = Sphere{}
	case "plane":
		g = Plane{}
	default:
		g = Cube{}
	}

	mat, err := p.material(item)
	if err != nil {
		return nil, err
	}
	m, err := p.transform(item)
	if err != nil {
		return nil, err
	}

	o, ok := NewObject(g, m, mat)
	if !ok {
		return nil, errorf(item, "%s transform is singular", add.Value)
	}
	return o, nil
}

func (p *parser) material(item *yaml.Node) (Material, error) {
	mat := DefaultMaterial()
	node := lookup(item, "material")
	if node == nil {
		return mat, nil
	}
	m, err := p.mapping(node)
	if err != nil {
		return mat, err
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{"ambient", &mat.Ambient},
		{"diffuse", &mat.Diffuse},
		{"specular", &mat.Specular},
		{"shininess", &mat.Shininess},
		{"reflective", &mat.Reflective},
	}
	for _, f := range fields {
		if *f.dst, err = p.floatOr(m, f.key, *f.dst); err != nil {
			return mat, err
		}
	}
	if mat.Color, err = p.colorOr(m, "color", mat.Color); err != nil {
		return mat, err
	}
	return mat, nil
}

// transform folds the transform list of item into one matrix. Each step is
// applied after the previous ones.
func (p *parser) transform(item *yaml.Node) (Matrix, error) {
	m := Identity()
	node := lookup(item, "transform")
	if node == nil {
		return m, nil
	}
	if node.Kind != yaml.SequenceNode {
		return m, errorf(node, "transform must be a list")
	}

	var steps []*yaml.Node
	if err := p.resolveSteps(node, &steps, 0); err != nil {
		return m, err
	}
	for _, step := range steps {
		t, err := p.step(step)
		if err != nil {
			return m, err
		}
		m = t.Multiply(m)
	}
	return m, nil
}

// resolveSteps flattens a transform list, expanding references to defined
// transform lists.
func (p *parser) resolveSteps(list *yaml.Node, out *[]*yaml.Node, depth int) error {
	if depth > maxDefineDepth {
		return errorf(list, "transform definitions nested too deeply")
	}
	for _, item := range list.Content {
		item = deref(item)
		switch item.Kind {
		case yaml.SequenceNode:
			*out = append(*out, item)
		case yaml.ScalarNode:
			def, ok := p.defs[item.Value]
			if !ok {
				return errorf(item, "definition %q not found", item.Value)
			}
			if def.Kind != yaml.SequenceNode {
				return errorf(item, "definition %q is not a transform list", item.Value)
			}
			if err := p.resolveSteps(def, out, depth+1); err != nil {
				return err
			}
		default:
			return errorf(item, "unexpected transform entry")
		}
	}
	return nil
}

func (p *parser) step(step *yaml.Node) (Matrix, error) {
	if len(step.Content) == 0 {
		return Matrix{}, errorf(step, "empty transform step")
	}
	name := deref(step.Content[0])
	args := make([]float64, 0, len(step.Content)-1)
	for _, a := range step.Content[1:] {
		f, err := p.float(a)
		if err != nil {
			return Matrix{}, err
		}
		args = append(args, f)
	}

	want := map[string]int{
		"translate": 3, "scale": 3, "shear": 6,
		"rotate-x": 1, "rotate-y": 1, "rotate-z": 1,
	}
	n, ok := want[name.Value]
	if !ok {
		return Matrix{}, errorf(name, "unknown transform %q", name.Value)
	}
	if len(args) != n {
		return Matrix{}, errorf(step, "%s takes %d arguments, got %d", name.Value, n, len(args))
	}

	switch name.Value {
	case "translate":
		return Translation(args[0], args[1], args[2]), nil
	case "scale":
		return Scaling(args[0], args[1], args[2]), nil
	case "shear":
		return Shearing(args[0], args[1], args[2], args[3], args[4], args[5]), nil
	case "rotate-x":
		return RotationX(args[0]), nil
	case "rotate-y":
		return RotationY(args[0]), nil
	default:
		return RotationZ(args[0]), nil
	}
}

// mapping returns n itself or the mapping definition it names.
func (p *parser) mapping(n *yaml.Node) (*yaml.Node, error) {
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		return n, nil
	case yaml.ScalarNode:
		def, ok := p.defs[n.Value]
		if !ok {
			return nil, errorf(n, "definition %q not found, it must be declared before use", n.Value)
		}
		if def.Kind != yaml.MappingNode {
			return nil, errorf(n, "definition %q is not a mapping", n.Value)
		}
		return def, nil
	default:
		return nil, errorf(n, "expected a mapping or a definition name")
	}
}

func (p *parser) float(n *yaml.Node) (float64, error) {
	n = deref(n)
	var f float64
	if n.Kind != yaml.ScalarNode || n.Decode(&f) != nil {
		return 0, errorf(n, "expected a number, got %q", n.Value)
	}
	return f, nil
}

func (p *parser) floatOr(m *yaml.Node, key string, def float64) (float64, error) {
	n := lookup(m, key)
	if n == nil {
		return def, nil
	}
	return p.float(n)
}

func (p *parser) intOr(m *yaml.Node, key string, def int) (int, error) {
	n := lookup(m, key)
	if n == nil {
		return def, nil
	}
	var v int
	if n.Kind != yaml.ScalarNode || n.Decode(&v) != nil {
		return 0, errorf(n, "%s must be an integer, got %q", key, n.Value)
	}
	if v < 0 {
		return 0, errorf(n, "%s must not be negative", key)
	}
	return v, nil
}

func (p *parser) vecOr(m *yaml.Node, key string, def Vec3) (Vec3, error) {
	n := lookup(m, key)
	if n == nil {
		return def, nil
	}
	if n.Kind != yaml.SequenceNode || len(n.Content) != 3 {
		return Vec3{}, errorf(n, "%s must be a list of 3 numbers", key)
	}
	var xyz [3]float64
	for i, c := range n.Content {
		f, err := p.float(c)
		if err != nil {
			return Vec3{}, err
		}
		xyz[i] = f
	}
	return V3(xyz[0], xyz[1], xyz[2]), nil
}

func (p *parser) colorOr(m *yaml.Node, key string, def Color) (Color, error) {
	if lookup(m, key) == nil {
		return def, nil
	}
	v, err := p.vecOr(m, key, Vec3{})
	if err != nil {
		return Color{}, err
	}
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if c < 0 || c > 1 {
			return Color{}, errorf(lookup(m, key), "%s components must be within [0, 1]", key)
		}
	}
	return RGB(v.X, v.Y, v.Z), nil
}

// lookup returns the value for key in mapping m, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return deref(m.Content[i+1])
		}
	}
	return nil
}

// merge returns a mapping with the pairs of parent overridden by child.
func merge(parent, child *yaml.Node) *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: child.Line, Column: child.Column}
	out.Content = append(out.Content, parent.Content...)

	for i := 0; i+1 < len(child.Content); i += 2 {
		key, val := child.Content[i], child.Content[i+1]
		replaced := false
		for j := 0; j+1 < len(out.Content); j += 2 {
			if out.Content[j].Value == key.Value {
				out.Content[j+1] = val
				replaced = true
				break
			}
		}
		if !replaced {
			out.Content = append(out.Content, key, val)
		}
	}
	return out
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func errorf(n *yaml.Node, format string, args ...any) error {
	line := 0
	if n != nil {
		line = n.Line
	}
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
