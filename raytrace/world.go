package raytrace

// MaxDepth is the default number of reflection bounces.
const MaxDepth = 4

// World is the set of lights and objects in a scene.
type World struct {
	Lights  []Light
	Objects []*Object
}

// intersect returns all hits of r in the world.
func (w *World) intersect(r Ray) []Intersection {
	var xs []Intersection
	for _, o := range w.Objects {
		xs = o.intersect(r, xs)
	}
	return xs
}

// ColorAt returns the color seen along r, following at most depth
// reflection bounces.
func (w *World) ColorAt(r Ray, depth int) Color {
	x, ok := hit(w.intersect(r))
	if !ok {
		return Black
	}

	point := r.Position(x.T)
	eye := r.Direction.Neg()
	normal := x.Object.NormalAt(point)
	if normal.Dot(eye) < 0 {
		normal = normal.Neg()
	}
	over := point.Add(normal.Mul(Epsilon))

	m := x.Object.Material
	c := Black
	for _, l := range w.Lights {
		c = c.Add(lighting(m, l, over, eye, normal, w.shadowed(l, over)))
	}

	if m.Reflective > 0 && depth > 0 {
		reflected := Ray{Origin: over, Direction: r.Direction.Reflect(normal)}
		c = c.Add(w.ColorAt(reflected, depth-1).Scale(m.Reflective))
	}
	return c
}

// shadowed reports whether an object lies between p and the light.
func (w *World) shadowed(l Light, p Vec3) bool {
	v := l.Position.Sub(p)
	dist := v.Length()
	x, ok := hit(w.intersect(Ray{Origin: p, Direction: v.Normalize()}))
	return ok && x.T < dist
}
