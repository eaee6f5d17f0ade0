// Package engine evaluates scene source code. It wraps zygomys in a
// sandboxed environment, builds a scene graph from the DSL builtins and
// compiles the graph to a distance program.
package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sdfvm/pkg/compile"
	"github.com/chazu/sdfvm/pkg/graph"
	"github.com/chazu/sdfvm/pkg/logging"
	"github.com/chazu/sdfvm/pkg/program"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or an invalid scene.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// Scene is the output of a successful evaluation.
type Scene struct {
	Graph    *graph.Graph
	Dim      graph.Dim
	Program2 program.Program2
	Program3 program.Program3
	Warnings []EvalWarning
}

// Empty reports whether the scene contains no shapes.
func (s *Scene) Empty() bool {
	return s.Program2.Len() == 0 && s.Program3.Len() == 0
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	// Timeout bounds a single evaluation; zero selects DefaultTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes scene source code and produces a compiled Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse, eval or validation failure: returns nil scene + eval errors + nil error
//   - On fatal failure (ErrTimeout, ErrSuperseded, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	gen := e.begin()
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs, err := e.evaluate(source)
		done <- outcome{scene: s, errs: evalErrs, err: err}
	}()

	start := time.Now()
	o := e.await(done, gen)
	log := logging.Logger().With("generation", gen)
	switch {
	case o.err != nil:
		log.Error("evaluation failed", "err", o.err)
	case len(o.errs) > 0:
		log.Debug("evaluation rejected", "errors", len(o.errs))
	default:
		log.Debug("evaluation finished", "nodes", o.scene.Graph.NodeCount(),
			"warnings", len(o.scene.Warnings), "elapsed", time.Since(start))
	}
	return o.scene, o.errs, o.err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	b := &builder{g: graph.New()}

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return &Scene{Graph: b.g}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, []EvalError{interpreterError(err)}, nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, []EvalError{interpreterError(err)}, nil
	}

	// Without an explicit (scene ...) the value of the last expression is
	// the scene.
	if len(b.g.Roots) == 0 {
		if ref, ok := last.(*sexpNodeRef); ok {
			b.g.AddRoot(ref.id)
		}
	}

	return buildScene(b.g)
}

// buildScene validates and compiles g.
func buildScene(g *graph.Graph) (*Scene, []EvalError, error) {
	vr := graph.ValidateAll(g)
	if !vr.OK() {
		evalErrs := make([]EvalError, len(vr.Errors))
		for i, ve := range vr.Errors {
			evalErrs[i] = EvalError{Message: describe(g, ve)}
		}
		return nil, evalErrs, nil
	}

	res, err := compile.Compile(g)
	if err != nil {
		// Validation passed, so this is a program that does not fit the stack.
		msg := err.Error()
		var ve program.ValidationError
		if errors.As(err, &ve) {
			msg = "scene is nested too deeply: " + ve.Message
		}
		return nil, []EvalError{{Message: msg}}, nil
	}

	s := &Scene{Graph: g, Dim: res.Dim, Program2: res.Program2, Program3: res.Program3}
	for _, w := range vr.Warnings {
		s.Warnings = append(s.Warnings, EvalWarning{Message: describe(g, w), NodeID: w.NodeID})
	}
	return s, nil, nil
}

// describe formats a finding for users, who know nodes by name rather than
// by ID.
func describe(g *graph.Graph, ve graph.ValidationError) string {
	if n := g.Get(ve.NodeID); n != nil && n.Name != "" {
		return fmt.Sprintf("%s (in %q)", ve.Message, n.Name)
	}
	return ve.Message
}

// zygomys reports positions as "Error on line N: ..." and sometimes as a
// bare "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// interpreterError turns a zygomys failure into an EvalError, lifting the
// line number out of the message when there is one.
func interpreterError(err error) EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return EvalError{Message: strings.TrimSpace(msg)}
}
