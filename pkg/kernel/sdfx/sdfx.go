// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx marching cubes renderer.
package sdfx

import (
	"fmt"
	"time"

	"github.com/chazu/sdfvm/pkg/kernel"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/program"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultCells is the marching cubes resolution along the longest axis of
// the bounding box.
const DefaultCells = 200

// Kernel tessellates distance fields with uniform marching cubes.
type Kernel struct {
	cells int
}

// New returns a kernel sampling cells voxels along the longest bounding box
// axis. cells <= 0 selects DefaultCells.
func New(cells int) *Kernel {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Kernel{cells: cells}
}

// Cells returns the configured resolution.
func (k *Kernel) Cells() int { return k.cells }

// ToMesh converts a field to a triangle mesh using marching cubes.
func (k *Kernel) ToMesh(s sdf.SDF3) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("sdfx: nil field")
	}
	start := time.Now()
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	logging.Logger().Debug("marching cubes",
		"cells", k.cells, "triangles", len(triangles), "elapsed", time.Since(start))
	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// Program3 meshes a 3D program.
func (k *Kernel) Program3(prog program.Program3) (*kernel.Mesh, error) {
	if err := prog.Check(); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	return k.ToMesh(program.NewSDF3(prog))
}

// Program2 extrudes a 2D program to the given height, centered on z = 0,
// and meshes the result.
func (k *Kernel) Program2(prog program.Program2, height float64) (*kernel.Mesh, error) {
	if height <= 0 {
		return nil, fmt.Errorf("sdfx: extrusion height must be positive, got %g", height)
	}
	if err := prog.Check(); err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	return k.ToMesh(sdf.Extrude3D(program.NewSDF2(prog), height))
}
