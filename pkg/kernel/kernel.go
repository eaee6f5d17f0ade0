// Package kernel turns distance fields into triangle meshes for display or
// export. Two meshers are provided: Grid samples a parametric surface over a
// regular (u, v) lattice, and the sdfx sub-package polygonizes closed fields
// with marching cubes.
package kernel

import "github.com/deadsy/sdfx/sdf"

// Kernel tessellates a bounded 3D distance field.
type Kernel interface {
	ToMesh(s sdf.SDF3) (*Mesh, error)
}
