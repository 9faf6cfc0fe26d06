package raytrace

import "math"

// Matrix is a 4x4 transformation matrix in row-major order.
//
// Points are treated as column vectors with w = 1, directions with w = 0:
//
//	| m00 m01 m02 m03 |   | x |
//	| m10 m11 m12 m13 | * | y |
//	| m20 m21 m22 m23 |   | z |
//	| m30 m31 m32 m33 |   | w |
type Matrix [4][4]float64

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation creates a translation matrix.
func Translation(x, y, z float64) Matrix {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = x, y, z
	return m
}

// Scaling creates a scaling matrix.
func Scaling(x, y, z float64) Matrix {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// RotationX creates a rotation around the x axis (angle in radians).
func RotationX(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	m := Identity()
	m[1][1], m[1][2] = cos, -sin
	m[2][1], m[2][2] = sin, cos
	return m
}

// RotationY creates a rotation around the y axis (angle in radians).
func RotationY(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	m := Identity()
	m[0][0], m[0][2] = cos, sin
	m[2][0], m[2][2] = -sin, cos
	return m
}

// RotationZ creates a rotation around the z axis (angle in radians).
func RotationZ(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	m := Identity()
	m[0][0], m[0][1] = cos, -sin
	m[1][0], m[1][1] = sin, cos
	return m
}

// Shearing creates a shear matrix. Each argument moves one axis in
// proportion to another, e.g. xy moves x in proportion to y.
func Shearing(xy, xz, yx, yz, zx, zy float64) Matrix {
	m := Identity()
	m[0][1], m[0][2] = xy, xz
	m[1][0], m[1][2] = yx, yz
	m[2][0], m[2][1] = zx, zy
	return m
}

// ViewTransform orients the world relative to an eye at from looking at to.
func ViewTransform(from, to, up Vec3) Matrix {
	forward := to.Sub(from).Normalize()
	left := forward.Cross(up.Normalize())
	trueUp := left.Cross(forward)

	orientation := Matrix{
		{left.X, left.Y, left.Z, 0},
		{trueUp.X, trueUp.Y, trueUp.Z, 0},
		{-forward.X, -forward.Y, -forward.Z, 0},
		{0, 0, 0, 1},
	}
	return orientation.Multiply(Translation(-from.X, -from.Y, -from.Z))
}

// Multiply returns m * n (n is applied first).
func (m Matrix) Multiply(n Matrix) Matrix {
	var r Matrix
	for i := range 4 {
		for j := range 4 {
			r[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j] + m[i][3]*n[3][j]
		}
	}
	return r
}

// MulPoint transforms a point (w = 1).
func (m Matrix) MulPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// MulVec transforms a direction (w = 0).
func (m Matrix) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transpose of m.
func (m Matrix) Transpose() Matrix {
	var r Matrix
	for i := range 4 {
		for j := range 4 {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Invert returns the inverse of m and true, or the zero matrix and false if
// m is singular. It uses Gauss-Jordan elimination with partial pivoting.
func (m Matrix) Invert() (Matrix, bool) {
	a := m
	inv := Identity()

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		scale := 1 / a[col][col]
		for j := range 4 {
			a[col][j] *= scale
			inv[col][j] *= scale
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a[row][col]
			if f == 0 {
				continue
			}
			for j := range 4 {
				a[row][j] -= f * a[col][j]
				inv[row][j] -= f * inv[col][j]
			}
		}
	}

	return inv, true
}

// Approx returns true if the matrices are approximately equal.
func (m Matrix) Approx(n Matrix, epsilon float64) bool {
	for i := range 4 {
		for j := range 4 {
			if math.Abs(m[i][j]-n[i][j]) >= epsilon {
				return false
			}
		}
	}
	return true
}
