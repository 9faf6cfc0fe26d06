package raytrace

import "math"

// Material describes how a surface responds to light (Phong model).
type Material struct {
	Color      Color
	Ambient    float64
	Diffuse    float64
	Specular   float64
	Shininess  float64
	Reflective float64
}

// DefaultMaterial returns the material used when a scene object names none.
func DefaultMaterial() Material {
	return Material{
		Color:     White,
		Ambient:   0.1,
		Diffuse:   0.9,
		Specular:  0.9,
		Shininess: 200,
	}
}

// Light is a point light source.
type Light struct {
	Position  Vec3
	Intensity Color
}

// lighting computes the Phong color of point on a surface with material m.
func lighting(m Material, l Light, point, eye, normal Vec3, inShadow bool) Color {
	effective := m.Color.Blend(l.Intensity)
	ambient := effective.Scale(m.Ambient)
	if inShadow {
		return ambient
	}

	lightv := l.Position.Sub(point).Normalize()
	ldn := lightv.Dot(normal)
	if ldn < 0 {
		return ambient
	}

	diffuse := effective.Scale(m.Diffuse * ldn)
	specular := Black
	if rde := lightv.Neg().Reflect(normal).Dot(eye); rde > 0 {
		specular = l.Intensity.Scale(m.Specular * math.Pow(rde, m.Shininess))
	}
	return ambient.Add(diffuse).Add(specular)
}
