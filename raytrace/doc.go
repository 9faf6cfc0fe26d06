// Package raytrace is a small Whitted-style ray tracer that renders YAML
// scene descriptions row by row.
//
// It is the reference render unit for the scanline dispatcher: New parses a
// scene, Dimensions reports the camera size and RenderRow traces one row of
// pixels. Supported primitives are spheres, planes and cubes with Phong
// materials, point lights with hard shadows and mirror reflection.
package raytrace
