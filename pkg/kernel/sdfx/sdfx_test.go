package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/primitive"
	"github.com/chazu/sdfvm/pkg/program"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const testCells = 24

func sphereProgram(r float64, at v3.Vec) program.Program3 {
	return program.Program3{program.Push3(primitive.NewSphere(r), program.Translate3(at))}
}

func TestNewDefaults(t *testing.T) {
	if got := New(0).Cells(); got != DefaultCells {
		t.Errorf("New(0).Cells() = %d, want %d", got, DefaultCells)
	}
	if got := New(32).Cells(); got != 32 {
		t.Errorf("New(32).Cells() = %d, want 32", got)
	}
}

func TestSphere(t *testing.T) {
	k := New(testCells)
	prog := sphereProgram(1, v3.Vec{})
	mesh, err := k.Program3(prog)
	if err != nil {
		t.Fatalf("Program3 failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
	// Vertices lie on the surface to within a voxel.
	tol := 2.0 / testCells * 1.5
	for i := 0; i < mesh.VertexCount(); i++ {
		if d := math.Abs(prog.Evaluate(mesh.Vertex(i))); d > tol {
			t.Fatalf("vertex %d = %v is %g from the surface", i, mesh.Vertex(i), d)
		}
	}
}

func TestTranslatedBounds(t *testing.T) {
	k := New(testCells)
	mesh, err := k.Program3(sphereProgram(0.5, v3.Vec{X: 3, Y: -1, Z: 2}))
	if err != nil {
		t.Fatalf("Program3 failed: %v", err)
	}
	lo, hi, ok := mesh.Bounds()
	if !ok {
		t.Fatal("no bounds")
	}
	center := lo.Add(hi).MulScalar(0.5)
	if center.Sub(v3.Vec{X: 3, Y: -1, Z: 2}).Length() > 0.1 {
		t.Errorf("mesh center = %v, want ~(3,-1,2)", center)
	}
}

func TestDifferenceAddsTriangles(t *testing.T) {
	k := New(testCells)
	box := program.Program3{program.Push3(primitive.NewCuboid(v3.Vec{X: 1, Y: 1, Z: 1}), program.Transform3{})}
	boxMesh, err := k.Program3(box)
	if err != nil {
		t.Fatalf("Program3(box) failed: %v", err)
	}
	diff := program.Program3{
		program.Push3(primitive.NewCylinder(v3.Vec{Z: -2}, v3.Vec{Z: 2}, 0.4), program.Transform3{}),
		program.Push3(primitive.NewCuboid(v3.Vec{X: 1, Y: 1, Z: 1}), program.Transform3{}),
		program.Apply3(csg.OpDifference),
	}
	diffMesh, err := k.Program3(diff)
	if err != nil {
		t.Fatalf("Program3(diff) failed: %v", err)
	}
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestExtrude(t *testing.T) {
	k := New(testCells)
	prog := program.Program2{program.Push2(primitive.NewCircle(1), program.Translate2(v2.Vec{}))}
	mesh, err := k.Program2(prog, 0.5)
	if err != nil {
		t.Fatalf("Program2 failed: %v", err)
	}
	lo, hi, ok := mesh.Bounds()
	if !ok {
		t.Fatal("extruded mesh is empty")
	}
	if h := hi.Z - lo.Z; math.Abs(h-0.5) > 0.15 {
		t.Errorf("extruded height = %g, want ~0.5", h)
	}
	if _, err := k.Program2(prog, 0); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestMalformedProgram(t *testing.T) {
	k := New(testCells)
	if _, err := k.Program3(program.Program3{program.Apply3(csg.OpUnion)}); err == nil {
		t.Error("expected error for stack underflow")
	}
	if _, err := k.ToMesh(nil); err == nil {
		t.Error("expected error for nil field")
	}
}
