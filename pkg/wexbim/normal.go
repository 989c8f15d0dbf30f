package wexbim

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// decodeNormal expands a packed two-byte normal into a Y-up unit vector.
//
// The producer quantizes a hemisphere direction into (u, v) bytes: each maps
// to [-1, 1], and the third component is reconstructed as
// sqrt(max(0, 1 - u^2 - v^2)). The reconstructed Z-up vector then goes
// through the axis swap plus the handedness flip between the producer's
// forward convention and ours, which composes to (x, y, z) -> (x, z, -y).
func decodeNormal(u, v byte) mgl32.Vec3 {
	uf := 2*float32(u)/255 - 1
	vf := 2*float32(v)/255 - 1
	zsq := 1 - uf*uf - vf*vf
	var zf float32
	if zsq > 0 {
		zf = float32(gomath.Sqrt(float64(zsq)))
	}
	n := mgl32.Vec3{uf, vf, zf}
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return mgl32.Vec3{n[0], n[2], -n[1]}
}
