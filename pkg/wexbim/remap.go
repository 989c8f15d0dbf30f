package wexbim

import "github.com/go-gl/mathgl/mgl32"

// The WexBIM producer is Z-up; consumers of this package are Y-up. The remap
// is the fixed swap of the Y and Z axes, applied uniformly to positions,
// directions, bounds and transform matrices. The swap is its own inverse, so
// viewers and pickers can map back with the same functions.

// RemapPoint converts a Z-up point or direction to Y-up: (x, y, z) -> (x, z, y).
func RemapPoint(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], v[1]}
}

// RemapBounds remaps both corners of a Z-up bounding box.
func RemapBounds(b Bounds) Bounds {
	return Bounds{Min: RemapPoint(b.Min), Max: RemapPoint(b.Max)}
}

// RemapMatrix conjugates a column-major 4x4 transform with the Y/Z swap:
// T*M*T, which amounts to swapping rows 1 and 2 and columns 1 and 2.
func RemapMatrix(m mgl32.Mat4) mgl32.Mat4 {
	out := m
	// Swap rows 1 and 2 within every column.
	for col := 0; col < 4; col++ {
		out[col*4+1], out[col*4+2] = out[col*4+2], out[col*4+1]
	}
	// Swap columns 1 and 2.
	for row := 0; row < 4; row++ {
		out[4+row], out[8+row] = out[8+row], out[4+row]
	}
	return out
}
