package wexbim

import "github.com/go-gl/mathgl/mgl32"

// parseShapes reads one block's repetition count and that many instance
// records. Blocks with repetition > 1 store one transform per instance
// (float32 elements in version 1 streams, float64 from version 2 on);
// singleton blocks store none. Transforms are axis-remapped on read.
//
// The second return value lists product labels with no product record; the
// shapes are kept and the caller reports them.
func parseShapes(r *reader, version uint8, styles *StyleTable, products map[int32]*Product) ([]ShapeInstance, []int32, error) {
	repetition, err := r.readInt32()
	if err != nil {
		return nil, nil, ErrUnexpectedEOF
	}
	if repetition < 0 {
		return nil, nil, ErrBadCount
	}

	shapes := make([]ShapeInstance, 0, repetition)
	var unknown []int32
	for i := int32(0); i < repetition; i++ {
		var s ShapeInstance
		if s.ProductLabel, err = r.readInt32(); err != nil {
			return nil, nil, ErrUnexpectedEOF
		}
		if s.TypeID, err = r.readInt16(); err != nil {
			return nil, nil, ErrUnexpectedEOF
		}
		if s.InstanceLabel, err = r.readInt32(); err != nil {
			return nil, nil, ErrUnexpectedEOF
		}
		if s.StyleID, err = r.readInt32(); err != nil {
			return nil, nil, ErrUnexpectedEOF
		}

		if repetition > 1 {
			m, err := readMatrix(r, version)
			if err != nil {
				return nil, nil, ErrUnexpectedEOF
			}
			s.Transform = &m
		}

		var productType int16
		if p, ok := products[s.ProductLabel]; ok {
			productType = p.Type
		} else {
			unknown = append(unknown, s.ProductLabel)
		}
		s.Style = styles.Resolve(productType, s.StyleID)

		shapes = append(shapes, s)
	}
	return shapes, unknown, nil
}

// readMatrix reads 16 column-major elements and remaps the transform to Y-up.
func readMatrix(r *reader, version uint8) (mgl32.Mat4, error) {
	var m mgl32.Mat4
	if version == 1 {
		f, err := r.readFloat32s(16)
		if err != nil {
			return m, err
		}
		copy(m[:], f)
	} else {
		f, err := r.readFloat64s(16)
		if err != nil {
			return m, err
		}
		for i, v := range f {
			m[i] = float32(v)
		}
	}
	return RemapMatrix(m), nil
}
