package program

import (
	"errors"
	"fmt"

	"github.com/chazu/sdfvm/pkg/csg"
)

// Severity indicates whether a validation finding makes a program unusable
// or is merely informational.
type Severity int

const (
	SeverityError   Severity = iota // evaluation would panic or return garbage
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Index    int // instruction index, -1 for program-level findings
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] instruction %d: %s", e.Severity, e.Index, e.Message)
}

// validate walks the program abstractly, tracking only the stack depth.
func validate(n int, at func(int) (Code, csg.Op, error)) []ValidationError {
	var errs []ValidationError
	depth := 0
	for i := 0; i < n; i++ {
		code, op, err := at(i)
		if err != nil {
			errs = append(errs, ValidationError{Index: i, Message: err.Error(), Severity: SeverityError})
		}
		switch code {
		case CodePush:
			depth++
			if depth == StackCapacity+1 {
				errs = append(errs, ValidationError{
					Index:    i,
					Message:  fmt.Sprintf("stack overflow: more than %d pending distances", StackCapacity),
					Severity: SeverityError,
				})
			}
		case CodeApply:
			if !op.Valid() {
				errs = append(errs, ValidationError{
					Index:    i,
					Message:  fmt.Sprintf("invalid operator %d", uint8(op)),
					Severity: SeverityError,
				})
			}
			if depth < 2 {
				errs = append(errs, ValidationError{
					Index:    i,
					Message:  fmt.Sprintf("stack underflow: %s needs 2 operands, have %d", op, depth),
					Severity: SeverityError,
				})
				depth = 1
				continue
			}
			depth--
		case CodeOnion:
			if depth < 1 {
				errs = append(errs, ValidationError{
					Index:    i,
					Message:  "stack underflow: onion needs 1 operand, have 0",
					Severity: SeverityError,
				})
				depth = 1
			}
		default:
			errs = append(errs, ValidationError{
				Index:    i,
				Message:  fmt.Sprintf("invalid instruction code %d", uint8(code)),
				Severity: SeverityError,
			})
		}
	}
	if n > 0 && depth != 1 {
		errs = append(errs, ValidationError{
			Index:    -1,
			Message:  fmt.Sprintf("program leaves %d values on the stack, want 1", depth),
			Severity: SeverityError,
		})
	}
	return errs
}

func check(findings []ValidationError) error {
	var errs []error
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}
