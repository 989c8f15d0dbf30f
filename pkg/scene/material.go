package scene

import "github.com/strukt3d/wexview/pkg/wexbim"

// Material is a host-side, physically-based material descriptor derived from
// a WexBIM style. It is a description only; this package does not touch the
// GPU.
type Material struct {
	StyleID     int32
	BaseColor   [4]float32
	Emissive    [3]float32
	Opacity     float32
	Transparent bool
	DoubleSided bool
	FlatShading bool
}

// MaterialFactory materializes a descriptor for a style. Assemblers cache
// the result per style id, so a factory is called at most once per style.
type MaterialFactory func(style wexbim.Style) *Material

// emissiveFraction lifts unlit faces off pure black.
const emissiveFraction = 0.1

// DefaultMaterial is the factory used when the host supplies none: base
// color straight from the style, two-sided, with a small emissive term.
func DefaultMaterial(style wexbim.Style) *Material {
	return &Material{
		StyleID:   style.ID,
		BaseColor: style.RGBA,
		Emissive: [3]float32{
			style.RGBA[0] * emissiveFraction,
			style.RGBA[1] * emissiveFraction,
			style.RGBA[2] * emissiveFraction,
		},
		Opacity:     style.Opacity,
		Transparent: style.Transparent,
		DoubleSided: true,
	}
}

// materialCache shares one descriptor across every node of a style.
type materialCache struct {
	factory   MaterialFactory
	byStyleID map[int32]*Material
}

func newMaterialCache(factory MaterialFactory) *materialCache {
	if factory == nil {
		factory = DefaultMaterial
	}
	return &materialCache{factory: factory, byStyleID: make(map[int32]*Material)}
}

func (c *materialCache) get(style wexbim.Style) *Material {
	if m, ok := c.byStyleID[style.ID]; ok {
		return m
	}
	m := c.factory(style)
	c.byStyleID[style.ID] = m
	return m
}
