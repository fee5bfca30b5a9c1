package coro

// Pull runs fn as a generator. Each call to next resumes fn until it
// produces its next value, and reports false once fn has returned.
// stop abandons the generator; fn's pending yield panics with
// ErrCanceled so its deferred calls run.
func Pull[T any](fn func(yield func(T))) (next func() (T, bool), stop func()) {
	c := New(func(yield func(T) struct{}, _ func() struct{}) T {
		fn(func(v T) { yield(v) })
		var zero T
		return zero
	})

	next = func() (T, bool) {
		v, running := c.Resume(struct{}{})
		if !running {
			var zero T
			return zero, false
		}
		return v, true
	}
	return next, c.Cancel
}

type message[T any] struct {
	v  T
	ok bool
}

// Push runs fn as a sink. Each call to feed hands a value to fn and runs
// it until it asks for the next one; feed reports false once fn no
// longer accepts input. end tells fn its input is exhausted, so the next
// call to next returns false, and runs fn to completion. stop abandons
// fn instead: its pending next panics with ErrCanceled so its deferred
// calls run.
func Push[T any](fn func(next func() (T, bool))) (feed func(T) bool, end, stop func()) {
	c := New(func(_ func(struct{}) message[T], suspend func() message[T]) struct{} {
		fn(func() (T, bool) {
			m := suspend()
			return m.v, m.ok
		})
		return struct{}{}
	})

	started := false
	start := func() bool {
		if c.Done() {
			return false
		}
		if !started {
			started = true
			_, running := c.Resume(message[T]{})
			return running
		}
		return !c.Done()
	}

	feed = func(v T) bool {
		if !start() {
			return false
		}
		_, running := c.Resume(message[T]{v: v, ok: true})
		return running
	}

	end = func() {
		if !start() {
			return
		}
		if _, running := c.Resume(message[T]{}); running {
			// fn kept asking after its input ended.
			c.Cancel()
		}
	}
	return feed, end, c.Cancel
}
