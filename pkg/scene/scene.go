// Package scene assembles decoded WexBIM geometry into a renderable scene
// graph: one mesh node per singleton shape, one instanced node per group of
// repeated shapes sharing a geometry buffer and a style. Nodes carry enough
// identity in UserData for a picker to map a hit back to a building element.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/strukt3d/wexview/pkg/wexbim"
)

// UserData identifies the element behind a mesh node.
type UserData struct {
	ModelID       string
	ProductLabel  int32
	InstanceLabel int32
	StyleID       int32
}

// Instance is one placement of a shared geometry buffer.
type Instance struct {
	Transform     mgl32.Mat4
	ProductLabel  int32
	InstanceLabel int32
}

// Node is one renderable unit of the scene. A singleton node has a nil
// Instances slice and an optional Transform; an instanced node shares its
// Geometry across every entry of Instances and has no node-level Transform.
type Node struct {
	Geometry *wexbim.Geometry
	Material *Material
	// Transform is nil when the node sits at the model origin.
	Transform *mgl32.Mat4
	Instances []Instance
	UserData  UserData
}

// Instanced reports whether the node shares its geometry across multiple
// per-instance transforms.
func (n *Node) Instanced() bool { return len(n.Instances) > 0 }

// Bounds returns the node's bounding box with its transform (or all of its
// instance transforms) applied.
func (n *Node) Bounds() wexbim.Bounds {
	local := n.Geometry.Bounds()
	if n.Instanced() {
		out := transformBounds(local, n.Instances[0].Transform)
		for _, inst := range n.Instances[1:] {
			out = out.Union(transformBounds(local, inst.Transform))
		}
		return out
	}
	if n.Transform == nil {
		return local
	}
	return transformBounds(local, *n.Transform)
}

// transformBounds transforms the eight corners of a box and re-wraps them.
func transformBounds(b wexbim.Bounds, m mgl32.Mat4) wexbim.Bounds {
	var out wexbim.Bounds
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := m.Mul4x1(corner.Vec4(1)).Vec3()
		if i == 0 {
			out = wexbim.Bounds{Min: p, Max: p}
		} else {
			out = out.Extend(p)
		}
	}
	return out
}

// Scene is the assembled output of one WexBIM stream. It owns the geometry
// buffers and material descriptors of its nodes; material descriptors are
// shared across nodes of the same style.
type Scene struct {
	ModelID     string
	Meter       float32
	Regions     []wexbim.Region
	Products    map[int32]*wexbim.Product
	Nodes       []*Node
	Diagnostics []wexbim.Diagnostic
}

// Bounds returns the union of all node bounds, or a zero box for an empty
// scene.
func (s *Scene) Bounds() wexbim.Bounds {
	if len(s.Nodes) == 0 {
		return wexbim.Bounds{}
	}
	out := s.Nodes[0].Bounds()
	for _, n := range s.Nodes[1:] {
		out = out.Union(n.Bounds())
	}
	return out
}
