package graph

import (
	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/primitive"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Dim is the dimensionality of a shape or subtree.
type Dim int

const (
	DimNone Dim = 0 // no shapes below the node
	Dim2    Dim = 2
	Dim3    Dim = 3
)

// Shape3Data is a 3D primitive in its local frame.
type Shape3Data struct {
	Shape primitive.Shape3 `json:"shape"`
}

func (Shape3Data) nodeData() {}

// Shape2Data is a 2D primitive in its local frame.
type Shape2Data struct {
	Shape primitive.Shape2 `json:"shape"`
}

func (Shape2Data) nodeData() {}

// TransformData places its child. Rotation holds Euler angles in degrees;
// 2D subtrees use only Translation.X, Translation.Y and Rotation.Z.
type TransformData struct {
	Translation *v3.Vec `json:"translation,omitempty"`
	Rotation    *v3.Vec `json:"rotation,omitempty"`
}

func (TransformData) nodeData() {}

// OperatorData combines the children left to right with Op.
type OperatorData struct {
	Op csg.Op `json:"op"`
}

func (OperatorData) nodeData() {}

// GroupData unions its children.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ShellData hollows its child into a shell of the given thickness centered
// on the child's surface.
type ShellData struct {
	Thickness float64 `json:"thickness"`
}

func (ShellData) nodeData() {}
