package raytrace

import (
	"math"
	"sort"
)

// Ray is a half-line starting at Origin.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// Position returns the point at distance t along the ray.
func (r Ray) Position(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform returns the ray transformed by m.
func (r Ray) Transform(m Matrix) Ray {
	return Ray{Origin: m.MulPoint(r.Origin), Direction: m.MulVec(r.Direction)}
}

// Geometry is a primitive defined in its own object space.
type Geometry interface {
	// Intersect returns the ray parameters where r meets the surface.
	Intersect(r Ray) []float64

	// Normal returns the surface normal at an object-space point.
	Normal(p Vec3) Vec3
}

// Sphere is the unit sphere centered at the origin.
type Sphere struct{}

// Intersect implements Geometry.
func (Sphere) Intersect(r Ray) []float64 {
	a := r.Direction.Dot(r.Direction)
	b := 2 * r.Direction.Dot(r.Origin)
	c := r.Origin.Dot(r.Origin) - 1

	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)}
}

// Normal implements Geometry.
func (Sphere) Normal(p Vec3) Vec3 {
	return p
}

// Plane is the infinite xz plane through the origin.
type Plane struct{}

// Intersect implements Geometry.
func (Plane) Intersect(r Ray) []float64 {
	if math.Abs(r.Direction.Y) < Epsilon {
		return nil
	}
	return []float64{-r.Origin.Y / r.Direction.Y}
}

// Normal implements Geometry.
func (Plane) Normal(Vec3) Vec3 {
	return Vec3{Y: 1}
}

// Cube is the axis-aligned cube spanning [-1, 1] on every axis.
type Cube struct{}

// Intersect implements Geometry.
func (Cube) Intersect(r Ray) []float64 {
	xmin, xmax := slab(r.Origin.X, r.Direction.X)
	ymin, ymax := slab(r.Origin.Y, r.Direction.Y)
	zmin, zmax := slab(r.Origin.Z, r.Direction.Z)

	tmin := math.Max(xmin, math.Max(ymin, zmin))
	tmax := math.Min(xmax, math.Min(ymax, zmax))
	if tmin > tmax {
		return nil
	}
	return []float64{tmin, tmax}
}

// Normal implements Geometry.
func (Cube) Normal(p Vec3) Vec3 {
	ax, ay, az := math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)
	switch maxc := math.Max(ax, math.Max(ay, az)); maxc {
	case ax:
		return Vec3{X: p.X}
	case ay:
		return Vec3{Y: p.Y}
	default:
		return Vec3{Z: p.Z}
	}
}

// slab returns the entry and exit parameters of one cube axis.
func slab(origin, direction float64) (float64, float64) {
	tminNum := -1 - origin
	tmaxNum := 1 - origin

	var tmin, tmax float64
	if math.Abs(direction) >= Epsilon {
		tmin = tminNum / direction
		tmax = tmaxNum / direction
	} else {
		tmin = tminNum * math.Inf(1)
		tmax = tmaxNum * math.Inf(1)
	}
	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	return tmin, tmax
}

// Object is a placed primitive: geometry, transform and material.
type Object struct {
	Geometry  Geometry
	Material  Material
	transform Matrix
	inverse   Matrix
	normalTo  Matrix // transpose of inverse
}

// NewObject places g with transform m. It returns false if m is singular.
func NewObject(g Geometry, m Matrix, mat Material) (*Object, bool) {
	inv, ok := m.Invert()
	if !ok {
		return nil, false
	}
	return &Object{
		Geometry:  g,
		Material:  mat,
		transform: m,
		inverse:   inv,
		normalTo:  inv.Transpose(),
	}, true
}

// Transform returns the object-to-world transform.
func (o *Object) Transform() Matrix {
	return o.transform
}

// NormalAt returns the world-space unit normal at world point p.
func (o *Object) NormalAt(p Vec3) Vec3 {
	local := o.Geometry.Normal(o.inverse.MulPoint(p))
	return o.normalTo.MulVec(local).Normalize()
}

// Intersection is one ray/object hit.
type Intersection struct {
	T      float64
	Object *Object
}

// intersect appends the hits of r on o to xs.
func (o *Object) intersect(r Ray, xs []Intersection) []Intersection {
	local := r.Transform(o.inverse)
	for _, t := range o.Geometry.Intersect(local) {
		xs = append(xs, Intersection{T: t, Object: o})
	}
	return xs
}

// hit returns the closest intersection in front of the ray origin.
func hit(xs []Intersection) (Intersection, bool) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].T < xs[j].T })
	for _, x := range xs {
		if x.T >= 0 {
			return x, true
		}
	}
	return Intersection{}, false
}
