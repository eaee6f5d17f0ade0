package graph

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/chazu/sdfvm/pkg/primitive"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ValidationSeverity indicates whether a validation finding blocks
// compilation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks compilation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs every structural check on the graph and returns the
// findings sorted by severity, then message. An empty slice means the graph
// is valid. Validate never mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	cyclic := validateDAG(g)
	errs = append(errs, cyclic...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateShapes(g)...)
	// Dimension checks recurse through children and need an acyclic graph.
	if len(cyclic) == 0 {
		errs = append(errs, validateDims(g)...)
	}
	slices.SortStableFunc(errs, func(a, b ValidationError) int {
		if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
			return c
		}
		return cmp.Compare(a.Message, b.Message)
	})
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(g *Graph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child ID points to an existing node.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective and that every entry
// points to an existing node.
func validateNames(g *Graph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root exists and warns about nodes that
// are unreachable from any root. Orphans are still valid: they simply do
// not contribute to the compiled program.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateArity checks child counts and payload types per node kind.
func validateArity(g *Graph) []ValidationError {
	var errs []ValidationError
	add := func(n *Node, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: n.ID, Message: fmt.Sprintf(format, args...), Severity: sev})
	}
	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeShape:
			switch n.Data.(type) {
			case Shape2Data, Shape3Data:
			default:
				add(n, SeverityError, "shape %q has unexpected data type %T", n.Label(), n.Data)
			}
			if len(n.Children) > 0 {
				add(n, SeverityError, "shape %q cannot have children", n.Label())
			}
		case NodeTransform:
			if _, ok := n.Data.(TransformData); !ok {
				add(n, SeverityError, "transform %q has unexpected data type %T", n.Label(), n.Data)
			}
			if len(n.Children) != 1 {
				add(n, SeverityError, "transform %q needs exactly 1 child, has %d", n.Label(), len(n.Children))
			}
		case NodeOperator:
			od, ok := n.Data.(OperatorData)
			if !ok {
				add(n, SeverityError, "operator %q has unexpected data type %T", n.Label(), n.Data)
			} else if !od.Op.Valid() {
				add(n, SeverityError, "operator %q has invalid op %s", n.Label(), od.Op)
			}
			if len(n.Children) < 2 {
				add(n, SeverityError, "operator %q needs at least 2 operands, has %d", n.Label(), len(n.Children))
			}
		case NodeShell:
			sd, ok := n.Data.(ShellData)
			if !ok {
				add(n, SeverityError, "shell %q has unexpected data type %T", n.Label(), n.Data)
			} else if !(sd.Thickness > 0) || math.IsInf(sd.Thickness, 0) {
				add(n, SeverityError, "shell %q needs a positive thickness, got %g", n.Label(), sd.Thickness)
			}
			if len(n.Children) != 1 {
				add(n, SeverityError, "shell %q needs exactly 1 child, has %d", n.Label(), len(n.Children))
			}
		case NodeGroup:
			if len(n.Children) == 0 {
				add(n, SeverityWarning, "group %q is empty", n.Label())
			}
		default:
			add(n, SeverityError, "node %q has unknown kind %s", n.Label(), n.Kind)
		}
	}
	return errs
}

func finite2(vs ...v2.Vec) bool {
	for _, v := range vs {
		if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
			return false
		}
	}
	return true
}

func finite3(vs ...v3.Vec) bool {
	for _, v := range vs {
		if !finite2(v2.Vec{X: v.X, Y: v.Y}, v2.Vec{X: v.Z}) {
			return false
		}
	}
	return true
}

// validateShapes rejects non-finite parameters, which arise from zero
// normals, and warns about negative sizes, which silently turn shapes
// inside out.
func validateShapes(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes {
		var finite, negative bool
		switch d := n.Data.(type) {
		case Shape3Data:
			s := d.Shape
			finite = finite3(s.A, s.B) && finite2(s.R)
			negative = s.R.X < 0 || s.R.Y < 0
			if s.Kind == primitive.KindCuboid || s.Kind == primitive.KindCuboidFrame || s.Kind == primitive.KindCuboidFrameRadial {
				negative = negative || s.A.X < 0 || s.A.Y < 0 || s.A.Z < 0
			}
		case Shape2Data:
			s := d.Shape
			finite = finite2(s.Dims, s.N, s.P[0], s.P[1], s.P[2])
			negative = s.Dims.X < 0 || s.Dims.Y < 0
		default:
			continue
		}
		if !finite {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("shape %q has a non-finite parameter (zero-length normal?)", n.Label()),
				Severity: SeverityError,
			})
		}
		if negative {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("shape %q has a negative size", n.Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateDims rejects subtrees that mix 2D and 3D shapes.
func validateDims(g *Graph) []ValidationError {
	var errs []ValidationError
	type dims struct{ has2, has3 bool }
	memo := make(map[NodeID]dims)
	var visit func(id NodeID) dims
	visit = func(id NodeID) dims {
		if d, ok := memo[id]; ok {
			return d
		}
		n := g.Nodes[id]
		if n == nil {
			return dims{}
		}
		var d dims
		switch n.Data.(type) {
		case Shape2Data:
			d.has2 = true
		case Shape3Data:
			d.has3 = true
		}
		for _, c := range n.Children {
			cd := visit(c)
			d.has2 = d.has2 || cd.has2
			d.has3 = d.has3 || cd.has3
		}
		memo[id] = d
		return d
	}
	for id, n := range g.Nodes {
		d := visit(id)
		if !d.has2 || !d.has3 {
			continue
		}
		// Report only the lowest mixing nodes.
		lowest := true
		for _, c := range n.Children {
			if cd := visit(c); cd.has2 && cd.has3 {
				lowest = false
				break
			}
		}
		if lowest {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%s %q mixes 2D and 3D shapes", n.Kind, n.Label()),
				Severity: SeverityError,
			})
		}
	}
	// Roots are unioned together, so they must agree as well.
	var root dims
	for _, rid := range g.Roots {
		d := visit(rid)
		root.has2 = root.has2 || d.has2
		root.has3 = root.has3 || d.has3
	}
	if root.has2 && root.has3 && len(errs) == 0 {
		errs = append(errs, ValidationError{
			Message:  "roots mix 2D and 3D shapes",
			Severity: SeverityError,
		})
	}
	return errs
}
