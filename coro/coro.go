package coro

import (
	"errors"
	"fmt"
)

// ErrCanceled is raised when a coroutine is canceled, and when yield or
// suspend is called on a coroutine that has already completed.
var ErrCanceled = errors.New("coro: coroutine canceled")

// Coroutine is a resumable computation taking In values from its
// driver and handing Out values back.
type Coroutine[In, Out any] struct {
	h    handoff
	in   In
	out  Out
	done bool
	perr error
}

// New creates a suspended coroutine running fn. Nothing executes until
// the first Resume.
//
// Parameters:
//   - fn: the coroutine body. It receives a 'yield' function that hands
//     a value to the driver and pauses, and a 'suspend' function that
//     pauses without handing anything over. Both return the value passed
//     to the Resume that continues the coroutine. The value fn returns is
//     the final Out seen by the driver.
//
// The value passed to the very first Resume only starts the body; fn
// observes driver input through yield and suspend.
func New[In, Out any](fn func(yield func(Out) In, suspend func() In) Out) *Coroutine[In, Out] {
	c := new(Coroutine[In, Out])
	c.h = newHandoff(func() { c.body(fn) })
	return c
}

func (c *Coroutine[In, Out]) body(fn func(func(Out) In, func() In) Out) {
	defer func() {
		if c.done {
			return
		}
		// A cancellation unwinding through fn is not a new failure.
		if p := recover(); p != nil && p != any(c.perr) {
			c.perr = newPanicError(p)
		}
		c.done = true
	}()

	if c.perr == nil {
		c.out = fn(c.yield, c.suspend)
	}
}

func (c *Coroutine[In, Out]) yield(v Out) In {
	if c.done {
		panic(ErrCanceled)
	}
	c.out = v
	return c.park()
}

func (c *Coroutine[In, Out]) suspend() In {
	if c.done {
		panic(ErrCanceled)
	}
	return c.park()
}

func (c *Coroutine[In, Out]) park() In {
	// Deferred code of a canceled coroutine must not park again: nothing
	// would ever resume it.
	if c.perr != nil {
		panic(c.perr)
	}
	c.h.yield()
	if c.perr != nil {
		panic(c.perr)
	}
	return c.in
}

// Resume passes v to the coroutine and runs it until its next yield,
// suspend or return. It reports the value handed back and whether the
// coroutine can still be resumed. Resuming a finished coroutine returns
// the zero Out and false; resuming one that failed re-raises its panic.
func (c *Coroutine[In, Out]) Resume(v In) (Out, bool) {
	if c.perr != nil {
		panic(c.perr)
	}
	if c.done {
		var zero Out
		return zero, false
	}
	c.in = v
	c.h.resume()
	if c.perr != nil {
		panic(c.perr)
	}
	return c.out, !c.done
}

// Cancel terminates the coroutine. If it is parked, its pending yield or
// suspend panics with ErrCanceled so deferred calls run; a coroutine
// that was never resumed finishes without running its body. Deferred
// calls that yield or suspend again panic with ErrCanceled too, so the
// coroutine always finishes. A panic other than the cancellation itself
// is re-raised in the caller.
func (c *Coroutine[In, Out]) Cancel() {
	if c.done {
		return
	}
	canceled := fmt.Errorf("%w", ErrCanceled)
	c.perr = canceled
	c.h.resume()
	if c.perr != nil && c.perr != canceled {
		panic(c.perr)
	}
}

// Done reports whether the coroutine has finished, either by returning,
// by panicking or by being canceled.
func (c *Coroutine[In, Out]) Done() bool {
	return c.done
}
