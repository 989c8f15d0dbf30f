// Package wexbim parses the WexBIM binary geometry format produced by the
// Xbim toolchain. A WexBIM stream carries a header, spatial regions, a style
// palette, product records, and a sequence of geometry blocks; each block
// pairs a list of shape instances with one shared triangle mesh.
//
// All multi-byte values are little-endian. Coordinates in the file are Z-up;
// everything this package emits (positions, normals, bounds, transforms) is
// remapped to Y-up. See RemapPoint for the exact contract.
package wexbim

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// MagicNumber is the sentinel every WexBIM stream starts with.
const MagicNumber int32 = 94132117

// MaxVersion is the newest stream version this package understands.
const MaxVersion = 4

// Format errors.
var (
	ErrBadMagic           = errors.New("wexbim: bad magic number")
	ErrUnsupportedVersion = errors.New("wexbim: unsupported version")
	ErrUnexpectedEOF      = errors.New("wexbim: unexpected end of stream")
	ErrBadCount           = errors.New("wexbim: impossible count")
)

// Product types with dedicated handling.
const (
	ProductTypeOpening int16 = 3
	ProductTypeSpace   int16 = 4
)

// Header is the fixed-layout prelude of a WexBIM stream. The counts describe
// the whole file; MeterFactor converts model units to meters. WorldOrigin is
// only stored for version > 3 and is zero otherwise.
type Header struct {
	Version       uint8
	ShapeCount    int32
	VertexCount   int32
	TriangleCount int32
	MatrixCount   int32
	ProductCount  int32
	StyleCount    int32
	MeterFactor   float32
	WorldOrigin   [3]float64
	RegionCount   int16
}

// Bounds is an axis-aligned bounding box, min <= max componentwise.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	out := b
	for i := 0; i < 3; i++ {
		if other.Min[i] < out.Min[i] {
			out.Min[i] = other.Min[i]
		}
		if other.Max[i] > out.Max[i] {
			out.Max[i] = other.Max[i]
		}
	}
	return out
}

// Extend grows the bounds to include point p.
func (b Bounds) Extend(p mgl32.Vec3) Bounds {
	out := b
	for i := 0; i < 3; i++ {
		if p[i] < out.Min[i] {
			out.Min[i] = p[i]
		}
		if p[i] > out.Max[i] {
			out.Max[i] = p[i]
		}
	}
	return out
}

// Region is a spatial partition of the model. For version >= 3 streams each
// region owns a run of geometry blocks.
type Region struct {
	Population int32
	Centre     mgl32.Vec3
	Bounds     Bounds
}

// Product identifies a building element. Many shape instances may reference
// one product.
type Product struct {
	Label    int32
	Type     int16
	Bounds   Bounds
	RenderID int32
	// Hidden marks openings and spaces, which viewers conventionally start
	// with invisible.
	Hidden bool
}

// ShapeInstance is one appearance of a product within a geometry block.
type ShapeInstance struct {
	ProductLabel  int32
	TypeID        int16
	InstanceLabel int32
	// StyleID is the raw style id from the file; Style is the resolved
	// palette entry after sentinel substitution.
	StyleID int32
	Style   Style
	// Transform is nil when the block holds a single shape (the file stores
	// no matrix in that case).
	Transform *mgl32.Mat4
}

// Geometry is one decoded triangle mesh. Positions and Normals are packed
// x,y,z triplets in Y-up space; Normals are unit length for every vertex
// referenced by at least one triangle and zero for unreferenced vertices.
type Geometry struct {
	SubVersion uint8
	Positions  []float32
	Normals    []float32
	Indices    []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (g *Geometry) VertexCount() int { return len(g.Positions) / 3 }

// TriangleCount returns the number of triangles in the mesh.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Bounds returns the axis-aligned bounding box of the mesh positions.
func (g *Geometry) Bounds() Bounds {
	if len(g.Positions) < 3 {
		return Bounds{}
	}
	b := Bounds{
		Min: mgl32.Vec3{g.Positions[0], g.Positions[1], g.Positions[2]},
		Max: mgl32.Vec3{g.Positions[0], g.Positions[1], g.Positions[2]},
	}
	for i := 3; i+2 < len(g.Positions); i += 3 {
		b = b.Extend(mgl32.Vec3{g.Positions[i], g.Positions[i+1], g.Positions[i+2]})
	}
	return b
}

// Block pairs the shape instances of one geometry record with its mesh.
type Block struct {
	// Region is the index of the owning region, or -1 for version < 3
	// streams, which carry a flat block list.
	Region   int
	Shapes   []ShapeInstance
	Geometry *Geometry
}

// Model is the fully parsed content of one WexBIM stream.
type Model struct {
	Header      Header
	Regions     []Region
	Styles      *StyleTable
	Products    map[int32]*Product
	Blocks      []*Block
	Diagnostics []Diagnostic
}

// Product looks up a product record by label.
func (m *Model) Product(label int32) (*Product, bool) {
	p, ok := m.Products[label]
	return p, ok
}
