package coro

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError carries a value recovered inside a coroutine, together
// with the stack of the coroutine at the point it panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// newPanicError keeps the original stack of a PanicError re-raised
// through a nested coroutine.
func newPanicError(v any) error {
	if pe, ok := v.(*PanicError); ok {
		return pe
	}
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (p *PanicError) Error() string {
	return fmt.Sprint(p.Value)
}

// Unwrap returns the recovered value when it is an error.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// ErrorWithStack formats the recovered value followed by its stack.
func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.Value, p.Stack)
}

// DebugString walks the whole error tree below p, including joined
// errors, and prints every stack it finds along the way.
func (p *PanicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	stack := []error{p}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e == nil || seen[e] {
			continue
		}
		seen[e] = true

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		if pe, ok := e.(*PanicError); ok {
			sb.WriteString(pe.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			errs := u.Unwrap()
			for i := len(errs) - 1; i >= 0; i-- {
				stack = append(stack, errs[i])
			}
		default:
			stack = append(stack, errors.Unwrap(e))
		}
	}
	return sb.String()
}
