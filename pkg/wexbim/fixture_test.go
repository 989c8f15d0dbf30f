package wexbim

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// bufWriter builds little-endian binary fixtures for tests.
type bufWriter struct {
	bytes.Buffer
}

func (w *bufWriter) putUint8(v uint8)     { w.WriteByte(v) }
func (w *bufWriter) putInt16(v int16)     { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *bufWriter) putInt32(v int32)     { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *bufWriter) putFloat32(v float32) { binary.Write(&w.Buffer, binary.LittleEndian, v) }
func (w *bufWriter) putFloat64(v float64) { binary.Write(&w.Buffer, binary.LittleEndian, v) }

func (w *bufWriter) putFloat32s(vs ...float32) {
	for _, v := range vs {
		w.putFloat32(v)
	}
}

// writeHeader emits the fixed prelude. The world origin triplet is only
// written for version > 3, matching the format.
func writeHeader(w *bufWriter, version uint8, shapes, vertices, triangles, matrices, products, styles int32, meter float32, regions int16) {
	w.putInt32(MagicNumber)
	w.putUint8(version)
	w.putInt32(shapes)
	w.putInt32(vertices)
	w.putInt32(triangles)
	w.putInt32(matrices)
	w.putInt32(products)
	w.putInt32(styles)
	w.putFloat32(meter)
	if version > 3 {
		w.putFloat64(0)
		w.putFloat64(0)
		w.putFloat64(0)
	}
	w.putInt16(regions)
}

func writeRegion(w *bufWriter, population int32, centre [3]float32, bbox [6]float32) {
	w.putInt32(population)
	w.putFloat32s(centre[:]...)
	w.putFloat32s(bbox[:]...)
}

func writeStyle(w *bufWriter, id int32, rgba [4]float32) {
	w.putInt32(id)
	w.putFloat32s(rgba[:]...)
}

func writeProduct(w *bufWriter, label int32, typ int16, bbox [6]float32) {
	w.putInt32(label)
	w.putInt16(typ)
	w.putFloat32s(bbox[:]...)
}

func writeShape(w *bufWriter, product int32, typeID int16, instance, style int32) {
	w.putInt32(product)
	w.putInt16(typeID)
	w.putInt32(instance)
	w.putInt32(style)
}

// writeMatrix64 emits 16 column-major float64 elements, as version >= 2
// streams store transforms.
func writeMatrix64(w *bufWriter, m mgl32.Mat4) {
	for _, v := range m {
		w.putFloat64(float64(v))
	}
}

// writeGeometry wraps a geometry sub-region with its length prefix. faces
// writes the face records (everything after the triangle count).
func writeGeometry(w *bufWriter, subVersion uint8, positions []float32, triangles int32, faces func(g *bufWriter)) {
	var g bufWriter
	g.putUint8(subVersion)
	g.putInt32(int32(len(positions) / 3))
	g.putInt32(triangles)
	g.putFloat32s(positions...)
	faces(&g)
	w.putInt32(int32(g.Len()))
	w.Write(g.Bytes())
}

// singleTriangleFile builds the minimal one-triangle stream used across the
// decoder tests: one region, one red style (id 7), one product (label 100),
// one singleton shape, one planar face with packed normal (128, 128).
func singleTriangleFile(version uint8, productType int16, styleID int32) []byte {
	var w bufWriter
	writeHeader(&w, version, 1, 3, 1, 0, 1, 1, 1.0, 1)
	writeRegion(&w, 1, [3]float32{0, 0, 0}, [6]float32{0, 0, 0, 1, 1, 0})
	writeStyle(&w, 7, [4]float32{1, 0, 0, 1})
	writeProduct(&w, 100, productType, [6]float32{0, 0, 0, 1, 1, 0})
	w.putInt32(1) // geometry blocks in region
	w.putInt32(1) // repetition
	writeShape(&w, 100, 1, 1, styleID)
	writeGeometry(&w, 1, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 1, func(g *bufWriter) {
		g.putInt32(1) // face count
		g.putInt32(1) // one planar triangle
		g.putUint8(128)
		g.putUint8(128)
		g.putUint8(0)
		g.putUint8(1)
		g.putUint8(2)
	})
	return w.Bytes()
}
