package graph

import "fmt"

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeShape     NodeKind = iota // 2D or 3D primitive
	NodeTransform                 // placement of a single child (move, rotate)
	NodeOperator                  // boolean combination of two or more children
	NodeGroup                     // union of children, used for roots
	NodeShell                     // onion shell around a single child
)

func (k NodeKind) String() string {
	switch k {
	case NodeShape:
		return "shape"
	case NodeTransform:
		return "transform"
	case NodeOperator:
		return "operator"
	case NodeGroup:
		return "group"
	case NodeShell:
		return "shell"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// Label is the name of the node, or its short ID when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
