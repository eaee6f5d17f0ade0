// Package primitive is the library of signed distance functions for 2D and
// 3D shapes. Every function takes a query point already expressed in the
// shape's local frame and returns a signed distance: negative inside, zero
// on the boundary, positive outside.
//
// Most functions are exact Euclidean distances. Cuboid, CuboidFrame and
// Cylinder are exact outside and a tight bound inside. Many formulas follow
// Inigo Quilez, https://iquilezles.org/articles/distfunctions/.
package primitive
