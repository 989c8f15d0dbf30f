package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strukt3d/wexview/pkg/wexbim"
)

// testStyles obtains a populated style table through the public decoder so
// the scene tests exercise the same palette a host would see.
func testStyles() *wexbim.StyleTable {
	model, err := wexbim.Decode(minimalFile(1))
	if err != nil {
		panic(err)
	}
	return model.Styles
}

func triangleGeometry() *wexbim.Geometry {
	return &wexbim.Geometry{
		SubVersion: 1,
		Positions:  []float32{0, 0, 0, 1, 0, 0, 0, 0, 1},
		Normals:    []float32{0, 1, 0, 0, 1, 0, 0, 1, 0},
		Indices:    []uint32{0, 1, 2},
	}
}

func shape(product, instance int32, style wexbim.Style, transform *mgl32.Mat4) wexbim.ShapeInstance {
	return wexbim.ShapeInstance{
		ProductLabel:  product,
		TypeID:        1,
		InstanceLabel: instance,
		StyleID:       style.ID,
		Style:         style,
		Transform:     transform,
	}
}

func TestAssemble_Singleton(t *testing.T) {
	styles := testStyles()
	model := &wexbim.Model{
		Header: wexbim.Header{Version: 4, MeterFactor: 1},
		Styles: styles,
		Blocks: []*wexbim.Block{{
			Region:   0,
			Shapes:   []wexbim.ShapeInstance{shape(100, 1, styles.Lookup(7), nil)},
			Geometry: triangleGeometry(),
		}},
	}

	s := Assemble(model, WithModelID("m1"))
	if len(s.Nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(s.Nodes))
	}
	node := s.Nodes[0]
	if node.Instanced() {
		t.Error("singleton node must not be instanced")
	}
	if node.Transform != nil {
		t.Error("shape without transform should yield nil node transform")
	}
	if node.UserData != (UserData{ModelID: "m1", ProductLabel: 100, InstanceLabel: 1, StyleID: 7}) {
		t.Errorf("UserData = %+v", node.UserData)
	}
	if node.Material.BaseColor != [4]float32{1, 0, 0, 1} {
		t.Errorf("material base color = %v, want red", node.Material.BaseColor)
	}
	if node.Material.Transparent {
		t.Error("opaque style produced transparent material")
	}
}

func TestAssemble_InstancedSharesGeometryAndMaterial(t *testing.T) {
	styles := testStyles()
	red := styles.Lookup(7)
	id := mgl32.Ident4()
	offset := mgl32.Translate3D(2, 0, 0)
	geometry := triangleGeometry()
	model := &wexbim.Model{
		Header: wexbim.Header{Version: 4, MeterFactor: 1},
		Styles: styles,
		Blocks: []*wexbim.Block{{
			Region: 0,
			Shapes: []wexbim.ShapeInstance{
				shape(100, 1, red, &id),
				shape(101, 2, red, &offset),
			},
			Geometry: geometry,
		}},
	}

	s := Assemble(model)
	if len(s.Nodes) != 1 {
		t.Fatalf("node count = %d, want 1 (same style, one instanced node)", len(s.Nodes))
	}
	node := s.Nodes[0]
	if !node.Instanced() {
		t.Fatal("expected an instanced node")
	}
	if node.Geometry != geometry {
		t.Error("instanced node must reference the shared geometry buffer")
	}
	if len(node.Instances) != 2 {
		t.Fatalf("instance count = %d, want 2", len(node.Instances))
	}
	if node.Instances[0].ProductLabel != 100 || node.Instances[1].ProductLabel != 101 {
		t.Errorf("instance products = %d, %d, want 100, 101",
			node.Instances[0].ProductLabel, node.Instances[1].ProductLabel)
	}
	second := node.Instances[1].Transform
	if (mgl32.Vec3{second[12], second[13], second[14]}) != (mgl32.Vec3{2, 0, 0}) {
		t.Errorf("second instance translation = (%f, %f, %f)", second[12], second[13], second[14])
	}
}

func TestAssemble_PartitionsByStyle(t *testing.T) {
	styles := testStyles()
	id := mgl32.Ident4()
	model := &wexbim.Model{
		Header: wexbim.Header{Version: 4},
		Styles: styles,
		Blocks: []*wexbim.Block{{
			Shapes: []wexbim.ShapeInstance{
				shape(100, 1, styles.Lookup(7), &id),
				shape(101, 2, styles.Lookup(wexbim.StyleUnknown), &id),
				shape(102, 3, styles.Lookup(7), &id),
			},
			Geometry: triangleGeometry(),
		}},
	}

	s := Assemble(model)
	if len(s.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2 (one per style)", len(s.Nodes))
	}
	// First-seen style order.
	if s.Nodes[0].UserData.StyleID != 7 {
		t.Errorf("first node style = %d, want 7", s.Nodes[0].UserData.StyleID)
	}
	if s.Nodes[1].UserData.StyleID != wexbim.StyleUnknown {
		t.Errorf("second node style = %d, want %d", s.Nodes[1].UserData.StyleID, wexbim.StyleUnknown)
	}
	if len(s.Nodes[0].Instances) != 2 || len(s.Nodes[1].Instances) != 1 {
		t.Errorf("instance split = %d/%d, want 2/1",
			len(s.Nodes[0].Instances), len(s.Nodes[1].Instances))
	}
	if s.Nodes[0].Geometry != s.Nodes[1].Geometry {
		t.Error("style partitions must share the block's geometry buffer")
	}
}

func TestAssemble_MissingTransformBecomesIdentity(t *testing.T) {
	styles := testStyles()
	id := mgl32.Ident4()
	model := &wexbim.Model{
		Header: wexbim.Header{Version: 4},
		Styles: styles,
		Blocks: []*wexbim.Block{{
			Shapes: []wexbim.ShapeInstance{
				shape(100, 1, styles.Lookup(7), nil),
				shape(101, 2, styles.Lookup(7), &id),
			},
			Geometry: triangleGeometry(),
		}},
	}

	s := Assemble(model)
	if len(s.Nodes) != 1 {
		t.Fatalf("node count = %d, want 1", len(s.Nodes))
	}
	if s.Nodes[0].Instances[0].Transform != mgl32.Ident4() {
		t.Error("absent transform should emit as identity")
	}
}

func TestAssemble_MaterialsCachedByStyle(t *testing.T) {
	styles := testStyles()
	model := &wexbim.Model{
		Header: wexbim.Header{Version: 4},
		Styles: styles,
		Blocks: []*wexbim.Block{
			{
				Shapes:   []wexbim.ShapeInstance{shape(100, 1, styles.Lookup(7), nil)},
				Geometry: triangleGeometry(),
			},
			{
				Shapes:   []wexbim.ShapeInstance{shape(101, 2, styles.Lookup(7), nil)},
				Geometry: triangleGeometry(),
			},
		},
	}

	calls := 0
	s := Assemble(model, WithMaterialFactory(func(style wexbim.Style) *Material {
		calls++
		return DefaultMaterial(style)
	}))
	if calls != 1 {
		t.Errorf("factory calls = %d, want 1 (cached by style id)", calls)
	}
	if s.Nodes[0].Material != s.Nodes[1].Material {
		t.Error("same style must share one material descriptor")
	}
}

func TestAssemble_AssignsModelID(t *testing.T) {
	styles := testStyles()
	model := &wexbim.Model{Header: wexbim.Header{Version: 4}, Styles: styles}

	s := Assemble(model)
	if s.ModelID == "" {
		t.Error("expected a generated model id")
	}
	other := Assemble(model)
	if other.ModelID == s.ModelID {
		t.Error("two assemblies should not share a generated model id")
	}
}

func TestNode_Bounds(t *testing.T) {
	geometry := triangleGeometry()
	offset := mgl32.Translate3D(10, 0, 0)
	node := &Node{Geometry: geometry, Transform: &offset}

	b := node.Bounds()
	if b.Min != (mgl32.Vec3{10, 0, 0}) || b.Max != (mgl32.Vec3{11, 0, 1}) {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestScene_BoundsUnion(t *testing.T) {
	geometry := triangleGeometry()
	offset := mgl32.Translate3D(5, 0, 0)
	s := &Scene{Nodes: []*Node{
		{Geometry: geometry},
		{Geometry: geometry, Transform: &offset},
	}}

	b := s.Bounds()
	if b.Min != (mgl32.Vec3{0, 0, 0}) || b.Max != (mgl32.Vec3{6, 0, 1}) {
		t.Errorf("scene bounds = %+v", b)
	}
}
