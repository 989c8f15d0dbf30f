package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/strukt3d/wexview/pkg/wexbim"
)

// Option configures scene assembly.
type Option func(*assembler)

// WithModelID sets the scene's model id. Without it a random UUID is
// assigned.
func WithModelID(id string) Option {
	return func(a *assembler) { a.modelID = id }
}

// WithMaterialFactory replaces the default material factory.
func WithMaterialFactory(factory MaterialFactory) Option {
	return func(a *assembler) { a.factory = factory }
}

// WithLogger routes assembly and decode warnings to the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *assembler) { a.log = log }
}

// WithProgress installs a byte-progress callback on the underlying decoder.
func WithProgress(fn func(consumed, total int)) Option {
	return func(a *assembler) { a.progress = fn }
}

type assembler struct {
	modelID   string
	factory   MaterialFactory
	log       *zap.Logger
	progress  func(consumed, total int)
	materials *materialCache
}

func newAssembler(opts []Option) *assembler {
	a := &assembler{log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.modelID == "" {
		a.modelID = uuid.NewString()
	}
	a.materials = newMaterialCache(a.factory)
	return a
}

func (a *assembler) decoderOptions() []wexbim.Option {
	opts := []wexbim.Option{wexbim.WithLogger(a.log)}
	if a.progress != nil {
		opts = append(opts, wexbim.WithProgress(a.progress))
	}
	return opts
}

// Load decodes a complete WexBIM stream and assembles it into a scene.
// Fatal decode errors surface here; block-level problems land on
// Scene.Diagnostics with the affected blocks dropped.
func Load(data []byte, opts ...Option) (*Scene, error) {
	return LoadStreaming(data, nil, opts...)
}

// LoadStreaming decodes and assembles one geometry block at a time. When
// visit is non-nil it is called with each node as soon as it is assembled;
// returning false stops the decode early and returns the scene built so
// far. The node order is file order and does not depend on pacing.
func LoadStreaming(data []byte, visit func(*Node) bool, opts ...Option) (*Scene, error) {
	a := newAssembler(opts)

	model, blocks, err := wexbim.NewDecoder(a.decoderOptions()...).Stream(data)
	if err != nil {
		return nil, err
	}

	s := &Scene{
		ModelID:  a.modelID,
		Meter:    model.Header.MeterFactor,
		Regions:  model.Regions,
		Products: model.Products,
	}

loop:
	for blk, err := range blocks {
		if err != nil {
			return nil, err
		}
		for _, node := range a.assembleBlock(blk) {
			s.Nodes = append(s.Nodes, node)
			if visit != nil && !visit(node) {
				break loop
			}
		}
	}
	s.Diagnostics = model.Diagnostics
	return s, nil
}

// Assemble builds a scene from an already decoded model.
func Assemble(model *wexbim.Model, opts ...Option) *Scene {
	a := newAssembler(opts)
	s := &Scene{
		ModelID:     a.modelID,
		Meter:       model.Header.MeterFactor,
		Regions:     model.Regions,
		Products:    model.Products,
		Diagnostics: model.Diagnostics,
	}
	for _, blk := range model.Blocks {
		s.Nodes = append(s.Nodes, a.assembleBlock(blk)...)
	}
	return s
}

// assembleBlock emits the scene nodes for one geometry block: a single mesh
// node for a singleton shape, or one instanced node per effective style for
// repeated shapes. Every emitted node references the block's one geometry
// buffer.
func (a *assembler) assembleBlock(blk *wexbim.Block) []*Node {
	if len(blk.Shapes) == 0 {
		a.log.Warn("geometry block with no shapes", zap.Int("region", blk.Region))
		return nil
	}

	if len(blk.Shapes) == 1 {
		shape := blk.Shapes[0]
		return []*Node{{
			Geometry:  blk.Geometry,
			Material:  a.materials.get(shape.Style),
			Transform: shape.Transform,
			UserData: UserData{
				ModelID:       a.modelID,
				ProductLabel:  shape.ProductLabel,
				InstanceLabel: shape.InstanceLabel,
				StyleID:       shape.Style.ID,
			},
		}}
	}

	// Partition repeated shapes by effective style, preserving first-seen
	// order so output stays stable.
	var order []int32
	groups := make(map[int32][]wexbim.ShapeInstance)
	for _, shape := range blk.Shapes {
		id := shape.Style.ID
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], shape)
	}

	nodes := make([]*Node, 0, len(order))
	for _, styleID := range order {
		shapes := groups[styleID]
		instances := make([]Instance, 0, len(shapes))
		for _, shape := range shapes {
			transform := mgl32.Ident4()
			if shape.Transform != nil {
				transform = *shape.Transform
			}
			instances = append(instances, Instance{
				Transform:     transform,
				ProductLabel:  shape.ProductLabel,
				InstanceLabel: shape.InstanceLabel,
			})
		}
		nodes = append(nodes, &Node{
			Geometry:  blk.Geometry,
			Material:  a.materials.get(shapes[0].Style),
			Instances: instances,
			UserData: UserData{
				ModelID:       a.modelID,
				ProductLabel:  shapes[0].ProductLabel,
				InstanceLabel: shapes[0].InstanceLabel,
				StyleID:       styleID,
			},
		})
	}
	return nodes
}
