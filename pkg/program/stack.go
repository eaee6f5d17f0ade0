package program

import "fmt"

// StackCapacity is the maximum number of intermediate distances a program
// may hold at once.
const StackCapacity = 16

// stack is a fixed-size distance stack. It lives on the caller's stack
// frame for the duration of one evaluation.
type stack struct {
	buf [StackCapacity]float64
	sp  int
}

func (s *stack) push(d float64) {
	if s.sp == StackCapacity {
		panic(fmt.Sprintf("program: stack overflow (capacity %d)", StackCapacity))
	}
	s.buf[s.sp] = d
	s.sp++
}

func (s *stack) pop() float64 {
	if s.sp == 0 {
		panic("program: stack underflow")
	}
	s.sp--
	return s.buf[s.sp]
}
