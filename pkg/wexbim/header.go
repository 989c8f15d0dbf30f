package wexbim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// parseHeader reads the fixed prelude of a stream.
func parseHeader(r *reader) (Header, error) {
	var h Header

	magic, err := r.readInt32()
	if err != nil {
		return h, ErrUnexpectedEOF
	}
	if magic != MagicNumber {
		return h, fmt.Errorf("%w: got %d", ErrBadMagic, magic)
	}

	h.Version, err = r.readUint8()
	if err != nil {
		return h, ErrUnexpectedEOF
	}
	if h.Version < 1 || h.Version > MaxVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	for _, dst := range []*int32{
		&h.ShapeCount, &h.VertexCount, &h.TriangleCount,
		&h.MatrixCount, &h.ProductCount, &h.StyleCount,
	} {
		if *dst, err = r.readInt32(); err != nil {
			return h, ErrUnexpectedEOF
		}
	}
	if h.ShapeCount < 0 || h.VertexCount < 0 || h.TriangleCount < 0 ||
		h.MatrixCount < 0 || h.ProductCount < 0 || h.StyleCount < 0 {
		return h, fmt.Errorf("%w: negative header count", ErrBadCount)
	}

	if h.MeterFactor, err = r.readFloat32(); err != nil {
		return h, ErrUnexpectedEOF
	}

	// The local world origin is only stored for newer streams.
	if h.Version > 3 {
		wcs, err := r.readFloat64s(3)
		if err != nil {
			return h, ErrUnexpectedEOF
		}
		copy(h.WorldOrigin[:], wcs)
	}

	if h.RegionCount, err = r.readInt16(); err != nil {
		return h, ErrUnexpectedEOF
	}
	if h.RegionCount < 0 {
		return h, fmt.Errorf("%w: %d regions", ErrBadCount, h.RegionCount)
	}

	return h, nil
}

// parseRegions reads the region list, remapping centres and bounds to Y-up.
func parseRegions(r *reader, count int) ([]Region, error) {
	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		pop, err := r.readInt32()
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		f, err := r.readFloat32s(9)
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		regions = append(regions, Region{
			Population: pop,
			Centre:     RemapPoint(mgl32.Vec3{f[0], f[1], f[2]}),
			Bounds: RemapBounds(Bounds{
				Min: mgl32.Vec3{f[3], f[4], f[5]},
				Max: mgl32.Vec3{f[6], f[7], f[8]},
			}),
		})
	}
	return regions, nil
}

// parseStyles reads the style palette and appends the sentinel entries.
func parseStyles(r *reader, count int) (*StyleTable, error) {
	table := newStyleTable(count)
	for i := 0; i < count; i++ {
		id, err := r.readInt32()
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		f, err := r.readFloat32s(4)
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		table.add(id, [4]float32{f[0], f[1], f[2], f[3]})
	}
	table.addSentinels()
	return table, nil
}

// parseProducts reads the product records. RenderID is the 1-based position
// in parse order; openings and spaces start hidden.
func parseProducts(r *reader, count int) (map[int32]*Product, error) {
	products := make(map[int32]*Product, count)
	for i := 0; i < count; i++ {
		label, err := r.readInt32()
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		typ, err := r.readInt16()
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		f, err := r.readFloat32s(6)
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
		products[label] = &Product{
			Label: label,
			Type:  typ,
			Bounds: RemapBounds(Bounds{
				Min: mgl32.Vec3{f[0], f[1], f[2]},
				Max: mgl32.Vec3{f[3], f[4], f[5]},
			}),
			RenderID: int32(i + 1),
			Hidden:   typ == ProductTypeOpening || typ == ProductTypeSpace,
		}
	}
	return products, nil
}
