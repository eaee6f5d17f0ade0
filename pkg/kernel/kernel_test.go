package kernel

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chazu/sdfvm/pkg/march"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	if _, _, ok := (&Mesh{}).Bounds(); ok {
		t.Fatal("empty mesh should have no bounds")
	}
	m := &Mesh{Vertices: []float32{1, -2, 0, -1, 3, 5}}
	lo, hi, ok := m.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if lo != (v3.Vec{X: -1, Y: -2, Z: 0}) || hi != (v3.Vec{X: 1, Y: 3, Z: 5}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
}

// --- Grid mesher ---

func planeXY(u, v float64) v3.Vec { return v3.Vec{X: u, Y: v} }

func TestGridLayout(t *testing.T) {
	m, err := Grid(context.Background(), 2, 3, planeXY, 2)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if got, want := m.VertexCount(), 2*3*4; got != want {
		t.Fatalf("VertexCount() = %d, want %d", got, want)
	}
	if got, want := m.TriangleCount(), 2*3*2; got != want {
		t.Fatalf("TriangleCount() = %d, want %d", got, want)
	}
	for cell := 0; cell < 6; cell++ {
		for k, idx := range []uint32{0, 1, 3, 0, 2, 3} {
			if got, want := m.Indices[cell*6+k], idx+uint32(cell*4); got != want {
				t.Fatalf("cell %d index %d = %d, want %d", cell, k, got, want)
			}
		}
	}
	// Cell (1, 2) spans u in [0.5, 1] and v in [2/3, 1].
	cell := 1*3 + 2
	want := []v3.Vec{{X: 0.5, Y: 2.0 / 3}, {X: 0.5, Y: 1}, {X: 1, Y: 2.0 / 3}, {X: 1, Y: 1}}
	for k, w := range want {
		got := m.Vertex(cell*4 + k)
		if got.Sub(w).Length() > 1e-6 {
			t.Errorf("corner %d = %v, want %v", k, got, w)
		}
	}
	for i := 0; i < m.VertexCount(); i++ {
		if m.Normals[3*i+2] != 1 {
			t.Fatalf("normal %d = %v, want +Z", i, m.Normals[3*i:3*i+3])
		}
	}
}

func TestGridDeterministicAcrossWorkers(t *testing.T) {
	f := func(u, v float64) v3.Vec { return Spherical(u, v).MulScalar(1 + 0.1*math.Sin(7*u)) }
	a, err := Grid(context.Background(), 16, 24, f, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Grid(context.Background(), 16, 24, f, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] || a.Normals[i] != b.Normals[i] {
			t.Fatalf("element %d differs between worker counts", i)
		}
	}
}

func TestGridErrors(t *testing.T) {
	if _, err := Grid(context.Background(), 0, 4, planeXY, 1); err == nil {
		t.Error("expected error for zero rows")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Grid(ctx, 4, 4, planeXY, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled grid error = %v, want context.Canceled", err)
	}
}

func TestSpherical(t *testing.T) {
	tests := []struct {
		name string
		u, v float64
		want v3.Vec
	}{
		{"north pole", 0, 0, v3.Vec{Z: 1}},
		{"south pole", 1, 0.3, v3.Vec{Z: -1}},
		{"equator +X", 0.5, 0, v3.Vec{X: 1}},
		{"equator +Y", 0.5, 0.25, v3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Spherical(tt.u, tt.v); got.Sub(tt.want).Length() > 1e-9 {
				t.Errorf("Spherical(%g, %g) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestShrinkWrapSphere(t *testing.T) {
	sphere := march.FieldFunc(func(p v3.Vec) float64 { return p.Length() - 1 })
	m, err := ShrinkWrap(context.Background(), sphere, 3, 12, 16, march.DefaultConfig(), 4)
	if err != nil {
		t.Fatalf("ShrinkWrap: %v", err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Vertex(i)
		if d := math.Abs(p.Length() - 1); d > 1e-3 {
			t.Fatalf("vertex %d = %v is %g from the surface", i, p, d)
		}
	}
	// Away from the poles every cell normal points outward.
	for i := 0; i < m.VertexCount(); i++ {
		n := v3.Vec{X: float64(m.Normals[3*i]), Y: float64(m.Normals[3*i+1]), Z: float64(m.Normals[3*i+2])}
		if n.Length() == 0 {
			continue
		}
		if n.Dot(m.Vertex(i)) <= 0 {
			t.Fatalf("normal %d = %v points inward", i, n)
		}
	}
}

func TestShrinkWrapMissCollapses(t *testing.T) {
	far := march.FieldFunc(func(p v3.Vec) float64 { return p.Sub(v3.Vec{X: 50}).Length() - 1 })
	m, err := ShrinkWrap(context.Background(), far, 2, 4, 4, march.DefaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		if m.Vertex(i) != (v3.Vec{}) {
			t.Fatalf("vertex %d = %v, want origin", i, m.Vertex(i))
		}
	}
	if _, err := ShrinkWrap(context.Background(), far, 0, 4, 4, march.DefaultConfig(), 1); err == nil {
		t.Error("expected error for zero radius")
	}
}
