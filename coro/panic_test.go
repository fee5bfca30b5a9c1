package coro

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// joinedError unwraps to several errors.
type joinedError struct {
	errs []error
}

func (j *joinedError) Error() string {
	return "joined errors"
}

func (j *joinedError) Unwrap() []error {
	return j.errs
}

// loopError unwraps to itself.
type loopError struct {
	self error
	msg  string
}

func (l *loopError) Error() string {
	return l.msg
}

func (l *loopError) Unwrap() error {
	return l.self
}

func TestDebugStringJoined(t *testing.T) {
	r := require.New(t)

	pe := &PanicError{
		Value: &joinedError{errs: []error{
			errors.New("inner error 1"),
			&PanicError{Value: "nested", Stack: []byte("nested stack")},
		}},
		Stack: []byte("outer stack"),
	}

	s := pe.DebugString()
	r.Contains(s, "joined errors")
	r.Contains(s, "inner error 1")
	r.Contains(s, "nested stack")
	r.Contains(s, "outer stack")
	r.Less(strings.Index(s, "inner error 1"), strings.Index(s, "nested stack"),
		"joined errors are printed in order")
}

func TestDebugStringLoop(t *testing.T) {
	r := require.New(t)

	l := &loopError{msg: "self error"}
	l.self = l

	pe := &PanicError{Value: l, Stack: []byte("mock stack")}
	s := pe.DebugString()
	r.Contains(s, "self error")
	r.Contains(s, "mock stack")
}

func TestPanicErrorMethods(t *testing.T) {
	r := require.New(t)

	cause := fmt.Errorf("test error")
	pe := &PanicError{Value: cause, Stack: []byte("mock stack")}
	r.Equal("test error", pe.Error())
	r.Contains(pe.ErrorWithStack(), "test error")
	r.Contains(pe.ErrorWithStack(), "mock stack")
	r.Equal(cause, pe.Unwrap())

	pe = &PanicError{Value: "not an error"}
	r.Nil(pe.Unwrap())
	r.Equal("not an error", pe.Error())
}

func TestPanicErrorFromCoroutine(t *testing.T) {
	r := require.New(t)

	c := New(func(yield func(int) int, suspend func() int) int {
		panic("from inside")
	})

	p := recovered(func() { c.Resume(0) })
	var pe *PanicError
	r.ErrorAs(p.(error), &pe)
	r.Equal("from inside", pe.Value)
	r.NotEmpty(pe.Stack)
}
