package wexbim

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// parseGeometry decodes one length-prefixed geometry sub-region: vertex
// positions followed by planar and non-planar face records. Positions are
// remapped to Y-up on read; per-face packed normals are accumulated into
// per-vertex smooth normals.
//
// Errors local to the sub-region come back as *blockError; the caller turns
// them into diagnostics and drops the block. Negative vertex, triangle or
// face counts are impossible counts and come back as ErrBadCount, which
// aborts the decode. trailing is the number of unread bytes left in the
// sub-region, reported but not fatal.
func parseGeometry(r *reader) (g *Geometry, trailing int, err error) {
	g = &Geometry{}

	if g.SubVersion, err = r.readUint8(); err != nil {
		return nil, 0, blockErrorf(DiagCorruptBlock, "reading sub-version: %v", err)
	}
	numVertices, err := r.readInt32()
	if err != nil {
		return nil, 0, blockErrorf(DiagCorruptBlock, "reading vertex count: %v", err)
	}
	numTriangles, err := r.readInt32()
	if err != nil {
		return nil, 0, blockErrorf(DiagCorruptBlock, "reading triangle count: %v", err)
	}
	if numVertices < 0 || numTriangles < 0 {
		return nil, 0, fmt.Errorf("%w: %d vertices, %d triangles", ErrBadCount, numVertices, numTriangles)
	}

	raw, err := r.readFloat32s(int(numVertices) * 3)
	if err != nil {
		return nil, 0, blockErrorf(DiagCorruptBlock, "reading %d vertices: %v", numVertices, err)
	}
	g.Positions = make([]float32, len(raw))
	for i := 0; i+2 < len(raw); i += 3 {
		g.Positions[i], g.Positions[i+1], g.Positions[i+2] = raw[i], raw[i+2], raw[i+1]
	}

	g.Indices = make([]uint32, 3*numTriangles)
	accum := make([]float32, 3*numVertices)
	contrib := make([]uint32, numVertices)

	// The index width is a closed set, picked once per block.
	readIndex := indexReader(r, numVertices)

	numFaces, err := r.readInt32()
	if err != nil {
		return nil, 0, blockErrorf(DiagCorruptBlock, "reading face count: %v", err)
	}
	if numFaces < 0 {
		return nil, 0, fmt.Errorf("%w: %d faces", ErrBadCount, numFaces)
	}

	write := 0
	addIndex := func(idx uint32, normal mgl32.Vec3) error {
		if idx >= uint32(numVertices) {
			return blockErrorf(DiagIndexOutOfRange, "index %d out of range [0, %d)", idx, numVertices)
		}
		if write >= len(g.Indices) {
			return blockErrorf(DiagCountMismatch, "more than %d indices emitted", len(g.Indices))
		}
		g.Indices[write] = idx
		write++
		accum[idx*3] += normal[0]
		accum[idx*3+1] += normal[1]
		accum[idx*3+2] += normal[2]
		contrib[idx]++
		return nil
	}

	for f := int32(0); f < numFaces; f++ {
		k, err := r.readInt32()
		if err != nil {
			return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d: %v", f, err)
		}
		if k == 0 {
			continue
		}
		planar := k > 0
		if !planar {
			k = -k
		}

		if planar {
			// One shared normal for all triangles of the face.
			u, err := r.readUint8()
			if err != nil {
				return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d normal: %v", f, err)
			}
			v, err := r.readUint8()
			if err != nil {
				return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d normal: %v", f, err)
			}
			normal := decodeNormal(u, v)
			for i := int32(0); i < 3*k; i++ {
				idx, err := readIndex()
				if err != nil {
					return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d indices: %v", f, err)
				}
				if err := addIndex(idx, normal); err != nil {
					return nil, 0, err
				}
			}
			continue
		}

		// Non-planar: a normal per triangle corner.
		for i := int32(0); i < 3*k; i++ {
			idx, err := readIndex()
			if err != nil {
				return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d corner: %v", f, err)
			}
			u, err := r.readUint8()
			if err != nil {
				return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d corner normal: %v", f, err)
			}
			v, err := r.readUint8()
			if err != nil {
				return nil, 0, blockErrorf(DiagCorruptBlock, "reading face %d corner normal: %v", f, err)
			}
			if err := addIndex(idx, decodeNormal(u, v)); err != nil {
				return nil, 0, err
			}
		}
	}

	if write != len(g.Indices) {
		return nil, 0, blockErrorf(DiagCountMismatch, "faces emitted %d indices, expected %d", write, len(g.Indices))
	}

	g.Normals = smoothNormals(accum, contrib)
	return g, r.remaining(), nil
}

// indexReader picks the per-block index decoder: indices are 1, 2 or 4
// bytes wide depending on the vertex count.
func indexReader(r *reader, numVertices int32) func() (uint32, error) {
	switch {
	case numVertices <= 0xFF:
		return func() (uint32, error) {
			v, err := r.readUint8()
			return uint32(v), err
		}
	case numVertices <= 0xFFFF:
		return func() (uint32, error) {
			v, err := r.readUint16()
			return uint32(v), err
		}
	default:
		return r.readUint32
	}
}

// smoothNormals averages the accumulated face normals per vertex and
// normalizes to unit length. Vertices no triangle referenced stay zero.
func smoothNormals(accum []float32, contrib []uint32) []float32 {
	normals := make([]float32, len(accum))
	for i, n := range contrib {
		if n == 0 {
			continue
		}
		x := accum[i*3] / float32(n)
		y := accum[i*3+1] / float32(n)
		z := accum[i*3+2] / float32(n)
		l := float32(gomath.Sqrt(float64(x*x + y*y + z*z)))
		if l == 0 {
			continue
		}
		normals[i*3] = x / l
		normals[i*3+1] = y / l
		normals[i*3+2] = z / l
	}
	return normals
}
