package engine

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds one evaluation when Engine.Timeout is zero.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when the sandbox does not finish in time. The
	// interpreter goroutine keeps running and its result is dropped.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one was started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type outcome struct {
	scene *Scene
	errs  []EvalError
	err   error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) latest(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

// await blocks until the evaluation of generation gen reports on done or
// the timeout elapses.
func (e *Engine) await(done <-chan outcome, gen uint64) outcome {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case o := <-done:
		if !e.latest(gen) {
			return outcome{err: ErrSuperseded}
		}
		return o
	case <-timer.C:
		return outcome{err: fmt.Errorf("%w after %s", ErrTimeout, limit)}
	}
}
