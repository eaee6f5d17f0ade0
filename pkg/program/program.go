package program

import (
	"fmt"
	"math"

	"github.com/chazu/sdfvm/pkg/csg"
	"github.com/chazu/sdfvm/pkg/primitive"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Code selects what an instruction does.
type Code uint8

const (
	CodePush  Code = iota // evaluate a primitive and push its distance
	CodeApply             // pop b, pop a, push op(a, b)
	CodeOnion             // pop a, push |a| - thickness
)

func (c Code) String() string {
	switch c {
	case CodePush:
		return "push"
	case CodeApply:
		return "apply"
	case CodeOnion:
		return "onion"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
}

// Instruction3 is one step of a 3D program.
type Instruction3 struct {
	Code      Code
	Shape     primitive.Shape3
	Transform Transform3
	Op        csg.Op
	Thickness float64 // shell thickness for CodeOnion
}

// Push3 returns an instruction that pushes the distance to s placed by t.
func Push3(s primitive.Shape3, t Transform3) Instruction3 {
	return Instruction3{Code: CodePush, Shape: s, Transform: t}
}

// Apply3 returns an instruction that combines the top two distances.
func Apply3(op csg.Op) Instruction3 {
	return Instruction3{Code: CodeApply, Op: op}
}

// Onion3 returns an instruction that hollows the top distance into a shell.
func Onion3(thickness float64) Instruction3 {
	return Instruction3{Code: CodeOnion, Thickness: thickness}
}

func (in Instruction3) String() string {
	switch in.Code {
	case CodeApply:
		return in.Op.String()
	case CodeOnion:
		return fmt.Sprintf("onion %g", in.Thickness)
	}
	return fmt.Sprintf("%s @ %v", in.Shape.Kind, in.Transform.Position())
}

// Program3 is a postfix program over 3D primitives.
type Program3 []Instruction3

// Evaluate returns the signed distance from p to the shape the program
// describes.
func (prog Program3) Evaluate(p v3.Vec) float64 {
	if len(prog) == 0 {
		return math.Inf(1)
	}
	var s stack
	for _, in := range prog {
		switch in.Code {
		case CodePush:
			s.push(in.Shape.Distance(in.Transform.Local(p)))
		case CodeApply:
			b := s.pop()
			a := s.pop()
			s.push(in.Op.Apply(a, b))
		case CodeOnion:
			s.push(csg.Onion(s.pop(), in.Thickness))
		default:
			panic(fmt.Sprintf("program: invalid instruction code %d", uint8(in.Code)))
		}
	}
	return s.pop()
}

// EvaluateChecked validates the program before evaluating it. Malformed
// programs are reported as an error instead of a panic.
func (prog Program3) EvaluateChecked(p v3.Vec) (float64, error) {
	if err := prog.Check(); err != nil {
		return 0, err
	}
	return prog.Evaluate(p), nil
}

func (prog Program3) Len() int { return len(prog) }

// Depth returns the largest stack depth reached while running the program,
// ignoring underflow.
func (prog Program3) Depth() int {
	return maxDepth(len(prog), func(i int) Code { return prog[i].Code })
}

// Validate reports structural problems with the program.
func (prog Program3) Validate() []ValidationError {
	return validate(len(prog), func(i int) (Code, csg.Op, error) {
		in := prog[i]
		var err error
		switch {
		case in.Code == CodePush && !validKind3(in.Shape.Kind):
			err = fmt.Errorf("invalid shape kind %d", uint8(in.Shape.Kind))
		case in.Code == CodeOnion:
			err = checkThickness(in.Thickness)
		}
		return in.Code, in.Op, err
	})
}

// Check returns the error-severity findings of Validate joined into one
// error, or nil.
func (prog Program3) Check() error {
	return check(prog.Validate())
}

// Instruction2 is one step of a 2D program.
type Instruction2 struct {
	Code      Code
	Shape     primitive.Shape2
	Transform Transform2
	Op        csg.Op
}

func Push2(s primitive.Shape2, t Transform2) Instruction2 {
	return Instruction2{Code: CodePush, Shape: s, Transform: t}
}

func Apply2(op csg.Op) Instruction2 {
	return Instruction2{Code: CodeApply, Op: op}
}

func Onion2(thickness float64) Instruction2 {
	return Instruction2{Code: CodeOnion, Thickness: thickness}
}

func (in Instruction2) String() string {
	switch in.Code {
	case CodeApply:
		return in.Op.String()
	case CodeOnion:
		return fmt.Sprintf("onion %g", in.Thickness)
	}
	return fmt.Sprintf("%s @ %v", in.Shape.Kind, in.Transform.Position())
}

// Program2 is a postfix program over 2D primitives.
type Program2 []Instruction2

func (prog Program2) Evaluate(p v2.Vec) float64 {
	if len(prog) == 0 {
		return math.Inf(1)
	}
	var s stack
	for _, in := range prog {
		switch in.Code {
		case CodePush:
			s.push(in.Shape.Distance(in.Transform.Local(p)))
		case CodeApply:
			b := s.pop()
			a := s.pop()
			s.push(in.Op.Apply(a, b))
		case CodeOnion:
			s.push(csg.Onion(s.pop(), in.Thickness))
		default:
			panic(fmt.Sprintf("program: invalid instruction code %d", uint8(in.Code)))
		}
	}
	return s.pop()
}

func (prog Program2) EvaluateChecked(p v2.Vec) (float64, error) {
	if err := prog.Check(); err != nil {
		return 0, err
	}
	return prog.Evaluate(p), nil
}

func (prog Program2) Len() int { return len(prog) }

func (prog Program2) Depth() int {
	return maxDepth(len(prog), func(i int) Code { return prog[i].Code })
}

func (prog Program2) Validate() []ValidationError {
	return validate(len(prog), func(i int) (Code, csg.Op, error) {
		in := prog[i]
		var err error
		switch {
		case in.Code == CodePush && !validKind2(in.Shape.Kind):
			err = fmt.Errorf("invalid shape kind %d", uint32(in.Shape.Kind))
		case in.Code == CodeOnion:
			err = checkThickness(in.Thickness)
		}
		return in.Code, in.Op, err
	})
}

func (prog Program2) Check() error {
	return check(prog.Validate())
}

func checkThickness(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return fmt.Errorf("onion thickness must be positive and finite, got %g", t)
	}
	return nil
}

func validKind3(k primitive.Kind3) bool {
	return k <= primitive.KindCuboidFrameRadial
}

func validKind2(k primitive.Kind) bool {
	return k <= primitive.KindKoch
}

func maxDepth(n int, code func(int) Code) int {
	depth, most := 0, 0
	for i := 0; i < n; i++ {
		switch code(i) {
		case CodePush:
			depth++
		case CodeApply:
			depth--
		}
		if depth < 0 {
			depth = 0
		}
		most = max(most, depth)
	}
	return most
}
