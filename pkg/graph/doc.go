// Package graph defines the scene graph produced by DSL evaluation.
// The graph is an immutable DAG of shapes, transforms, boolean operators
// and groups. It is lowered to a postfix distance program by package
// compile.
package graph
