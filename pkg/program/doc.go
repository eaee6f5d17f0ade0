// Package program holds postfix distance-field programs and their
// interpreter.
//
// A program is a flat list of instructions. A push instruction evaluates a
// primitive at the query point, mapped into the primitive's local frame,
// and pushes the distance. An apply instruction pops b, then a, and pushes
// op(a, b). The value left on the stack after the last instruction is the
// program's distance. An empty program evaluates to +Inf.
//
// Evaluation assumes a well-formed program and panics on stack misuse; use
// Validate or EvaluateChecked to find problems without panicking.
package program
