package compile_test

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/sdfvm/pkg/compile"
	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/chazu/sdfvm/pkg/primitive"
	"github.com/chazu/sdfvm/pkg/program"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// makeSphere creates a sphere shape node.
func makeSphere(name string, r float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("sphere/" + name),
		Kind: graph.NodeShape,
		Name: name,
		Data: graph.Shape3Data{Shape: primitive.NewSphere(r)},
	}
}

// makeMove creates a transform node with a translation and rotation.
func makeMove(name string, at, rot v3.Vec, child graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("move/" + name),
		Kind:     graph.NodeTransform,
		Name:     name,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: &at, Rotation: &rot},
	}
}

// makeOp creates an operator node.
func makeOp(name string, op csg.Op, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("op/" + name),
		Kind:     graph.NodeOperator,
		Name:     name,
		Children: children,
		Data:     graph.OperatorData{Op: op},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("group/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

func add(g *graph.Graph, nodes ...*graph.Node) {
	for _, n := range nodes {
		g.AddNode(n)
	}
}

func TestNilAndEmpty(t *testing.T) {
	res, err := compile.Compile(nil)
	if err != nil || res.Len() != 0 {
		t.Fatalf("Compile(nil) = %v, %v", res, err)
	}
	res, err = compile.Compile(graph.New())
	if err != nil {
		t.Fatal(err)
	}
	if res.Dim != graph.DimNone || res.Len() != 0 {
		t.Fatalf("empty graph compiled to dim %d with %d instructions", res.Dim, res.Len())
	}
	if !math.IsInf(res.Program3.Evaluate(v3.Vec{}), 1) {
		t.Error("empty program should evaluate to +Inf")
	}
}

func TestSingleSphere(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 1)
	add(g, ball)
	g.AddRoot(ball.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Dim != graph.Dim3 || res.Len() != 1 {
		t.Fatalf("dim %d, len %d", res.Dim, res.Len())
	}
	if d := res.Program3.Evaluate(v3.Vec{X: 3}); math.Abs(d-2) > 1e-12 {
		t.Errorf("distance = %g, want 2", d)
	}
}

func TestTranslationsAccumulate(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 0.5)
	inner := makeMove("inner", v3.Vec{X: 1}, v3.Vec{}, ball.ID)
	outer := makeMove("outer", v3.Vec{Y: 2}, v3.Vec{}, inner.ID)
	add(g, ball, inner, outer)
	g.AddRoot(outer.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if d := res.Program3.Evaluate(v3.Vec{X: 1, Y: 2}); math.Abs(d+0.5) > 1e-12 {
		t.Errorf("distance at center = %g, want -0.5", d)
	}
	pos := res.Program3[0].Transform.Position()
	if pos != (v3.Vec{X: 1, Y: 2}) {
		t.Errorf("baked position = %v, want (1,2,0)", pos)
	}
}

func TestRotationsAccumulate(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 0.5)
	inner := makeMove("inner", v3.Vec{}, v3.Vec{Z: 30}, ball.ID)
	outer := makeMove("outer", v3.Vec{}, v3.Vec{Z: 60}, inner.ID)
	add(g, ball, inner, outer)
	g.AddRoot(outer.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if rot := res.Program3[0].Transform.Rotation(); rot.Sub(v3.Vec{Z: 90}).Length() > 1e-9 {
		t.Errorf("baked rotation = %v, want (0,0,90)", rot)
	}
}

func TestRotationMovesPlacedChild(t *testing.T) {
	// A ball at (1,0,0) turned 90 degrees about Z lands on (0,1,0); a second
	// turn around that carries it to (-1,0,0).
	g := graph.New()
	ball := makeSphere("ball", 0.1)
	placed := makeMove("placed", v3.Vec{X: 1}, v3.Vec{}, ball.ID)
	quarter := makeMove("quarter", v3.Vec{}, v3.Vec{Z: 90}, placed.ID)
	half := makeMove("half", v3.Vec{}, v3.Vec{Z: 90}, quarter.ID)
	add(g, ball, placed, quarter, half)

	tests := []struct {
		root   *graph.Node
		inside v3.Vec
		away   v3.Vec
	}{
		{quarter, v3.Vec{Y: 1}, v3.Vec{X: 1}},
		{half, v3.Vec{X: -1}, v3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		g.Roots = []graph.NodeID{tt.root.ID}
		res, err := compile.Compile(g)
		if err != nil {
			t.Fatal(err)
		}
		if d := res.Program3.Evaluate(tt.inside); math.Abs(d+0.1) > 1e-9 {
			t.Errorf("%s: distance at %v = %g, want -0.1", tt.root.Name, tt.inside, d)
		}
		if d := res.Program3.Evaluate(tt.away); d < 1 {
			t.Errorf("%s: distance at %v = %g, want > 1", tt.root.Name, tt.away, d)
		}
	}
}

func TestMixedAxisRotationsCompose(t *testing.T) {
	// Turning about Z and then about X is not the same as one Euler
	// rotation with both angles, which would apply X first.
	g := graph.New()
	ball := makeSphere("ball", 0.1)
	placed := makeMove("placed", v3.Vec{Y: 1}, v3.Vec{}, ball.ID)
	aboutZ := makeMove("about-z", v3.Vec{}, v3.Vec{Z: 90}, placed.ID)
	aboutX := makeMove("about-x", v3.Vec{}, v3.Vec{X: 90}, aboutZ.ID)
	add(g, ball, placed, aboutZ, aboutX)
	g.AddRoot(aboutX.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	// (0,1,0) -> Z90 -> (-1,0,0) -> X90 -> (-1,0,0).
	if d := res.Program3.Evaluate(v3.Vec{X: -1}); math.Abs(d+0.1) > 1e-9 {
		t.Errorf("distance at (-1,0,0) = %g, want -0.1", d)
	}
	if d := res.Program3.Evaluate(v3.Vec{Z: 1}); d < 1 {
		t.Errorf("distance at (0,0,1) = %g, want > 1", d)
	}
}

func TestDifferenceOrder(t *testing.T) {
	g := graph.New()
	base := makeSphere("base", 1)
	cutter := makeSphere("cutter", 0.5)
	cut := makeOp("cut", csg.OpDifference, base.ID, cutter.ID)
	add(g, base, cutter, cut)
	g.AddRoot(cut.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	// cutter, base, difference
	if res.Len() != 3 || res.Program3[2].Op != csg.OpDifference {
		t.Fatalf("program = %v", res.Program3)
	}
	// The center is carved out, the shell remains.
	if d := res.Program3.Evaluate(v3.Vec{}); d <= 0 {
		t.Errorf("center distance = %g, want positive", d)
	}
	if d := res.Program3.Evaluate(v3.Vec{X: 0.75}); d >= 0 {
		t.Errorf("shell distance = %g, want negative", d)
	}
}

func TestDifferenceUnionsCutters(t *testing.T) {
	g := graph.New()
	base := makeSphere("base", 2)
	a := makeSphere("a", 0.5)
	b := makeSphere("b", 0.5)
	movedB := makeMove("b", v3.Vec{X: 1.5}, v3.Vec{}, b.ID)
	cut := makeOp("cut", csg.OpDifference, base.ID, a.ID, movedB.ID)
	add(g, base, a, b, movedB, cut)
	g.AddRoot(cut.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []v3.Vec{{}, {X: 1.5}} {
		if d := res.Program3.Evaluate(p); d <= 0 {
			t.Errorf("distance at %v = %g, want carved out", p, d)
		}
	}
	if d := res.Program3.Evaluate(v3.Vec{X: -1.5}); d >= 0 {
		t.Errorf("uncut region distance = %g, want negative", d)
	}
}

func TestOperatorFoldsLeft(t *testing.T) {
	g := graph.New()
	var ids []graph.NodeID
	for i, name := range []string{"a", "b", "c", "d"} {
		s := makeSphere(name, 0.4)
		m := makeMove(name, v3.Vec{X: float64(i)}, v3.Vec{}, s.ID)
		add(g, s, m)
		ids = append(ids, m.ID)
	}
	u := makeOp("all", csg.OpUnion, ids...)
	add(g, u)
	g.AddRoot(u.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if res.Depth() != 2 {
		t.Errorf("left fold depth = %d, want 2", res.Depth())
	}
	for i := 0; i < 4; i++ {
		if d := res.Program3.Evaluate(v3.Vec{X: float64(i)}); math.Abs(d+0.4) > 1e-12 {
			t.Errorf("distance at sphere %d = %g, want -0.4", i, d)
		}
	}
}

func TestEmptyGroupsContributeNothing(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 1)
	empty := makeGroup("empty")
	inter := makeOp("inter", csg.OpIntersection, ball.ID, empty.ID)
	add(g, ball, empty, inter)
	g.AddRoot(inter.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 1 {
		t.Fatalf("program = %v, want just the sphere", res.Program3)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected an empty group warning")
	}
}

func TestMultipleRootsUnion(t *testing.T) {
	g := graph.New()
	a := makeSphere("a", 1)
	b := makeSphere("b", 1)
	mb := makeMove("b", v3.Vec{Z: 5}, v3.Vec{}, b.ID)
	add(g, a, b, mb)
	g.AddRoot(a.ID)
	g.AddRoot(mb.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 3 || res.Program3[2].Op != csg.OpUnion {
		t.Fatalf("program = %v", res.Program3)
	}

	each, err := compile.CompileEach(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(each) != 2 || each[0].Name != "a" || each[1].Name != "b" {
		t.Fatalf("CompileEach names = %v", each)
	}
	if each[1].Program3.Len() != 1 {
		t.Errorf("second root program = %v", each[1].Program3)
	}
}

func TestTwoDimensional(t *testing.T) {
	g := graph.New()
	disc := &graph.Node{
		ID: graph.NewNodeID("circle"), Kind: graph.NodeShape,
		Data: graph.Shape2Data{Shape: primitive.NewCircle(1)},
	}
	rot := v3.Vec{Z: 90}
	at := v3.Vec{X: 2, Y: 1, Z: 7}
	move := &graph.Node{
		ID: graph.NewNodeID("move"), Kind: graph.NodeTransform,
		Children: []graph.NodeID{disc.ID},
		Data:     graph.TransformData{Translation: &at, Rotation: &rot},
	}
	add(g, disc, move)
	g.AddRoot(move.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if res.Dim != graph.Dim2 || res.Program3.Len() != 0 {
		t.Fatalf("dim %d, 3D len %d", res.Dim, res.Program3.Len())
	}
	tr := res.Program2[0].Transform
	if tr.Position() != (v2.Vec{X: 2, Y: 1}) || math.Abs(tr.Angle()-90) > 1e-9 {
		t.Errorf("transform = %v / %g", tr.Position(), tr.Angle())
	}
	if d := res.Program2.Evaluate(v2.Vec{X: 2, Y: 1}); math.Abs(d+1) > 1e-12 {
		t.Errorf("distance = %g, want -1", d)
	}
}

func TestInvalidGraphFails(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 1)
	lone := makeOp("lone", csg.OpUnion, ball.ID)
	add(g, ball, lone)
	g.AddRoot(lone.ID)
	_, err := compile.Compile(g)
	if err == nil || !strings.Contains(err.Error(), "needs at least 2 operands") {
		t.Fatalf("Compile error = %v", err)
	}
	if _, err := compile.CompileEach(g); err == nil {
		t.Error("CompileEach should fail too")
	}
}

func TestDeepNestingOverflows(t *testing.T) {
	// Right-nested unions need one stack slot per level.
	g := graph.New()
	prev := makeSphere("s0", 1)
	add(g, prev)
	prevID := prev.ID
	for i := 1; i <= program.StackCapacity+1; i++ {
		s := makeSphere("s"+string(rune('a'+i)), 1)
		u := makeOp("u"+string(rune('a'+i)), csg.OpUnion, s.ID, prevID)
		add(g, s, u)
		prevID = u.ID
	}
	g.AddRoot(prevID)
	if _, err := compile.Compile(g); err == nil || !strings.Contains(err.Error(), "evaluation stack") {
		t.Fatalf("expected stack error, got %v", err)
	}
}

func TestShellHollowsChild(t *testing.T) {
	g := graph.New()
	ball := makeSphere("ball", 1)
	placed := makeMove("placed", v3.Vec{X: 2}, v3.Vec{}, ball.ID)
	shell := &graph.Node{
		ID: graph.NewNodeID("shell"), Kind: graph.NodeShell, Name: "shell",
		Children: []graph.NodeID{placed.ID},
		Data:     graph.ShellData{Thickness: 0.1},
	}
	add(g, ball, placed, shell)
	g.AddRoot(shell.ID)

	res, err := compile.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 2 || res.Program3[1].Code != program.CodeOnion {
		t.Fatalf("program = %v", res.Program3)
	}
	if d := res.Program3.Evaluate(v3.Vec{X: 2}); math.Abs(d-0.9) > 1e-9 {
		t.Errorf("distance at hollow center = %g, want 0.9", d)
	}
	if d := res.Program3.Evaluate(v3.Vec{X: 3}); math.Abs(d+0.1) > 1e-9 {
		t.Errorf("distance in the wall = %g, want -0.1", d)
	}
}
