package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/tilestage/internal/logger"
	"github.com/Faultbox/tilestage/pkg/math"
)

type nodeInstance struct {
	node  int
	world math.DMat4
}

// rootNodes picks the nodes to start traversal from: the default scene,
// otherwise the first scene, otherwise every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil {
		if *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			return doc.Scenes[*doc.Scene].Nodes
		}
		logger.Warn("default scene out of range, using scene 0",
			zap.Int("scene", *doc.Scene), zap.Int("scenes", len(doc.Scenes)))
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// traverseScene walks the node hierarchy depth first and returns every node
// with its accumulated transform, in visit order.
func traverseScene(doc *gltf.Document) ([]nodeInstance, error) {
	var out []nodeInstance
	onPath := make([]bool, len(doc.Nodes))

	var visit func(idx int, parent math.DMat4) error
	visit = func(idx int, parent math.DMat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("%w: %d", ErrNodeIndex, idx)
		}
		if onPath[idx] {
			return fmt.Errorf("%w at node %d", ErrNodeCycle, idx)
		}
		onPath[idx] = true
		defer func() { onPath[idx] = false }()

		world := parent.Mul(NodeTransform(doc.Nodes[idx]))
		out = append(out, nodeInstance{node: idx, world: world})
		for _, c := range doc.Nodes[idx].Children {
			if err := visit(c, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range rootNodes(doc) {
		if err := visit(r, math.Identity()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NodeTransform returns the local transform of a node: its matrix when one
// is set, otherwise translation * rotation * scale.
func NodeTransform(n *gltf.Node) math.DMat4 {
	m := math.DMat4(n.Matrix)
	if !m.IsZero() && !m.IsIdentity() {
		return m
	}
	return math.FromTRS(n.Translation, n.Rotation, n.Scale)
}
