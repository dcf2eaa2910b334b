package rotation

import "math"

// Matrix is a 3x3 rotation matrix applied as camera = Matrix * world.
// It is a derived value, rebuilt from the current pose every sample.
type Matrix [3][3]float64

// Identity returns the identity rotation.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Build composes the camera rotation from yaw/pitch/roll in degrees.
//
// Composition order is Rz(roll) * Rx(pitch) * Ry(yaw): yaw pans about the
// world up axis, pitch tilts about the post-yaw lateral axis, roll turns
// about the post-pitch forward axis. The order is load-bearing; swapping it
// changes the visible sky rotation under combined motion.
func Build(yawDeg, pitchDeg, rollDeg float64) Matrix {
	yaw := yawDeg * math.Pi / 180
	pitch := pitchDeg * math.Pi / 180
	roll := rollDeg * math.Pi / 180

	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	ry := Matrix{
		{cy, 0, sy},
		{0, 1, 0},
		{-sy, 0, cy},
	}
	rx := Matrix{
		{1, 0, 0},
		{0, cp, -sp},
		{0, sp, cp},
	}
	rz := Matrix{
		{cr, -sr, 0},
		{sr, cr, 0},
		{0, 0, 1},
	}

	return mul(rz, mul(rx, ry))
}

func mul(a, b Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
	return out
}

// Apply rotates a single world-space vector into camera space.
func (m Matrix) Apply(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// RotateAll normalizes every direction to unit length and rotates it into
// camera space. Zero-norm directions are guarded by substituting a norm of 1,
// which leaves them at the origin rather than faulting.
//
// This runs once per sample for the whole catalog; all projection consumers
// share the result. Catalogs can be large, and a second full-catalog multiply
// per sample is the dominant avoidable cost.
func RotateAll(dirs [][3]float64, m Matrix) [][3]float64 {
	out := make([][3]float64, len(dirs))
	for i, d := range dirs {
		n := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
		if n == 0 {
			n = 1
		}
		out[i] = m.Apply([3]float64{d[0] / n, d[1] / n, d[2] / n})
	}
	return out
}

// Unit returns v scaled to unit length, or false for a zero-norm input.
func Unit(v [3]float64) ([3]float64, bool) {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		return [3]float64{}, false
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}, true
}
