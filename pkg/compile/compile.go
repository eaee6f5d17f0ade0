// Package compile walks a scene graph and lowers it to a postfix distance
// program. Groups and multiple roots become unions, shells hollow their
// child and operators fold their operands left to right. Nested transforms
// are composed as matrices and baked into each shape instruction.
package compile

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/program"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Result is a compiled scene. Exactly one of Program2 and Program3 is
// populated, according to Dim; both are empty for DimNone.
type Result struct {
	Name     string
	Dim      graph.Dim
	Program2 program.Program2
	Program3 program.Program3
	Warnings []graph.ValidationError
}

// Len returns the instruction count of the populated program.
func (r *Result) Len() int {
	if r.Dim == graph.Dim2 {
		return r.Program2.Len()
	}
	return r.Program3.Len()
}

// Depth returns the peak stack depth of the populated program.
func (r *Result) Depth() int {
	if r.Dim == graph.Dim2 {
		return r.Program2.Depth()
	}
	return r.Program3.Depth()
}

// Compile validates g and lowers all roots into a single program. Blocking
// validation findings are returned as a joined error.
func Compile(g *graph.Graph) (*Result, error) {
	if g == nil {
		return &Result{}, nil
	}
	vr := graph.ValidateAll(g)
	if !vr.OK() {
		return nil, validationError(vr.Errors)
	}
	res, err := compileRoots(g, g.Roots, g.Dim())
	if err != nil {
		return nil, err
	}
	res.Warnings = vr.Warnings
	return res, nil
}

// CompileEach validates g and lowers every root into its own program, named
// after the root. Roots that contribute no shapes are skipped.
func CompileEach(g *graph.Graph) ([]*Result, error) {
	if g == nil {
		return nil, nil
	}
	vr := graph.ValidateAll(g)
	if !vr.OK() {
		return nil, validationError(vr.Errors)
	}
	dim := g.Dim()
	var out []*Result
	for _, rid := range g.Roots {
		res, err := compileRoots(g, []graph.NodeID{rid}, dim)
		if err != nil {
			return nil, err
		}
		if res.Len() == 0 {
			continue
		}
		res.Name = g.Get(rid).Label()
		out = append(out, res)
	}
	return out, nil
}

func validationError(findings []graph.ValidationError) error {
	errs := make([]error, len(findings))
	for i, f := range findings {
		errs[i] = f
	}
	return fmt.Errorf("compile: invalid scene: %w", errors.Join(errs...))
}

func compileRoots(g *graph.Graph, roots []graph.NodeID, dim graph.Dim) (*Result, error) {
	c := &compiler{g: g, dim: dim, ts: newTransformStack(), memo: make(map[graph.NodeID]bool)}
	var nodes []*graph.Node
	for _, rid := range roots {
		if n := g.Get(rid); n != nil {
			nodes = append(nodes, n)
		}
	}
	if err := c.fold(nodes, csg.OpUnion); err != nil {
		return nil, err
	}

	res := &Result{Dim: dim, Program2: c.p2, Program3: c.p3}
	var err error
	switch dim {
	case graph.Dim2:
		err = c.p2.Check()
	case graph.Dim3:
		err = c.p3.Check()
	}
	if err != nil {
		return nil, fmt.Errorf("compile: scene does not fit the evaluation stack: %w", err)
	}
	logging.Logger().Debug("scene compiled",
		"dim", int(dim), "instructions", res.Len(), "depth", res.Depth())
	return res, nil
}

// transformStack composes spatial transforms during graph traversal. Each
// level holds the full parent-to-world placement, so a shape pushed at any
// depth gets one baked matrix.
type transformStack struct {
	frames3 []program.Transform3
	frames2 []program.Transform2
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

// push places the next level inside the current one: it rotates about its
// own origin, translates, and is then moved by every enclosing level.
func (ts *transformStack) push(translation, rotation v3.Vec) {
	ts.frames3 = append(ts.frames3, ts.transform3().Then(program.NewTransform3(translation, rotation)))
	local2 := program.NewTransform2(v2.Vec{X: translation.X, Y: translation.Y}, rotation.Z)
	ts.frames2 = append(ts.frames2, ts.transform2().Then(local2))
}

func (ts *transformStack) pop() {
	if len(ts.frames3) > 0 {
		ts.frames3 = ts.frames3[:len(ts.frames3)-1]
		ts.frames2 = ts.frames2[:len(ts.frames2)-1]
	}
}

func (ts *transformStack) transform3() program.Transform3 {
	if len(ts.frames3) == 0 {
		return program.Transform3{}
	}
	return ts.frames3[len(ts.frames3)-1]
}

func (ts *transformStack) transform2() program.Transform2 {
	if len(ts.frames2) == 0 {
		return program.Transform2{}
	}
	return ts.frames2[len(ts.frames2)-1]
}

type compiler struct {
	g    *graph.Graph
	dim  graph.Dim
	ts   *transformStack
	p2   program.Program2
	p3   program.Program3
	memo map[graph.NodeID]bool
}

// contributes reports whether n pushes a value when walked.
func (c *compiler) contributes(n *graph.Node) bool {
	if v, ok := c.memo[n.ID]; ok {
		return v
	}
	var v bool
	switch n.Kind {
	case graph.NodeShape:
		v = true
	case graph.NodeOperator:
		children := c.g.Children(n)
		if od, ok := n.Data.(graph.OperatorData); ok && od.Op == csg.OpDifference && len(children) > 0 {
			v = c.contributes(children[0])
			break
		}
		for _, ch := range children {
			v = v || c.contributes(ch)
		}
	default:
		for _, ch := range c.g.Children(n) {
			v = v || c.contributes(ch)
		}
	}
	c.memo[n.ID] = v
	return v
}

func (c *compiler) emitOp(op csg.Op) {
	if c.dim == graph.Dim2 {
		c.p2 = append(c.p2, program.Apply2(op))
		return
	}
	c.p3 = append(c.p3, program.Apply3(op))
}

func (c *compiler) emitOnion(thickness float64) {
	if c.dim == graph.Dim2 {
		c.p2 = append(c.p2, program.Onion2(thickness))
		return
	}
	c.p3 = append(c.p3, program.Onion3(thickness))
}

// fold walks the contributing nodes and combines them left to right.
func (c *compiler) fold(nodes []*graph.Node, op csg.Op) error {
	pushed := 0
	for _, n := range nodes {
		if !c.contributes(n) {
			continue
		}
		if err := c.walk(n); err != nil {
			return err
		}
		pushed++
		if pushed > 1 {
			c.emitOp(op)
		}
	}
	return nil
}

// walk emits the instructions for n. The caller guarantees n contributes.
func (c *compiler) walk(n *graph.Node) error {
	switch n.Kind {
	case graph.NodeShape:
		return c.shape(n)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		var translation, rotation v3.Vec
		if td.Translation != nil {
			translation = *td.Translation
		}
		if td.Rotation != nil {
			rotation = *td.Rotation
		}
		c.ts.push(translation, rotation)
		defer c.ts.pop()
		return c.fold(c.g.Children(n), csg.OpUnion)

	case graph.NodeOperator:
		od, ok := n.Data.(graph.OperatorData)
		if !ok {
			return fmt.Errorf("operator node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		children := c.g.Children(n)
		if od.Op != csg.OpDifference {
			return c.fold(children, od.Op)
		}
		// Difference removes every later operand from the first: the
		// cutters are unioned, then the base is pushed on top.
		cutters := 0
		for _, ch := range children[1:] {
			if c.contributes(ch) {
				cutters++
			}
		}
		if cutters > 0 {
			if err := c.fold(children[1:], csg.OpUnion); err != nil {
				return err
			}
		}
		if err := c.walk(children[0]); err != nil {
			return err
		}
		if cutters > 0 {
			c.emitOp(csg.OpDifference)
		}
		return nil

	case graph.NodeGroup:
		return c.fold(c.g.Children(n), csg.OpUnion)

	case graph.NodeShell:
		sd, ok := n.Data.(graph.ShellData)
		if !ok {
			return fmt.Errorf("shell node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		if err := c.fold(c.g.Children(n), csg.OpUnion); err != nil {
			return err
		}
		c.emitOnion(sd.Thickness)
		return nil

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (c *compiler) shape(n *graph.Node) error {
	switch d := n.Data.(type) {
	case graph.Shape3Data:
		c.p3 = append(c.p3, program.Push3(d.Shape, c.ts.transform3()))
	case graph.Shape2Data:
		c.p2 = append(c.p2, program.Push2(d.Shape, c.ts.transform2()))
	default:
		return fmt.Errorf("shape node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	return nil
}
