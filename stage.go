package csp

import (
	"iter"
	"slices"

	"github.com/webriots/csp/coro"
)

// Stage is a link in a pipeline: it consumes the upstream sequence and
// produces the downstream one. A stage may transform values, drop them,
// expand one into many, or aggregate until its input ends.
//
// Stages are ordinary synchronous code. Anything slow they do, such as
// reading a file or calling out to a subprocess, stalls the whole
// scheduler while it runs.
type Stage[T any] func(in iter.Seq[T]) iter.Seq[T]

// Chain composes stages left to right into a single stage.
func Chain[T any](stages ...Stage[T]) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return compose(in, stages)
	}
}

func compose[T any](src iter.Seq[T], stages []Stage[T]) iter.Seq[T] {
	for _, st := range stages {
		src = st(src)
	}
	return src
}

// Map applies f to every value.
func Map[T any](f func(T) T) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(yield func(T) bool) {
			for v := range in {
				if !yield(f(v)) {
					return
				}
			}
		}
	}
}

// Filter keeps the values keep accepts.
func Filter[T any](keep func(T) bool) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(yield func(T) bool) {
			for v := range in {
				if keep(v) && !yield(v) {
					return
				}
			}
		}
	}
}

// Tap calls f on every value and passes it on unchanged.
func Tap[T any](f func(T)) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(yield func(T) bool) {
			for v := range in {
				f(v)
				if !yield(v) {
					return
				}
			}
		}
	}
}

// FlatMap replaces every value with the values f returns for it.
func FlatMap[T any](f func(T) []T) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(yield func(T) bool) {
			for v := range in {
				for _, w := range f(v) {
					if !yield(w) {
						return
					}
				}
			}
		}
	}
}

// Take passes on the first n values and then stops consuming.
func Take[T any](n int) Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(yield func(T) bool) {
			if n <= 0 {
				return
			}
			i := 0
			for v := range in {
				if !yield(v) {
					return
				}
				i++
				if i == n {
					return
				}
			}
		}
	}
}

// Generate ignores its input and produces vals. It is meant to lead a
// Pipeline.
func Generate[T any](vals ...T) Stage[T] {
	return func(iter.Seq[T]) iter.Seq[T] {
		return slices.Values(vals)
	}
}

// Discard consumes its input and produces nothing.
func Discard[T any]() Stage[T] {
	return func(in iter.Seq[T]) iter.Seq[T] {
		return func(func(T) bool) {
			for range in {
			}
		}
	}
}

// chain drives a channel's stages one pushed value at a time. The
// stages run inside a push coroutine: each push resumes it until the
// composed sequence asks for its next input, collecting whatever came
// out in between. A started chain is tracked by its owner so the
// coroutine can be stopped if the channel is never closed.
type chain[T any] struct {
	owner   *Scheduler
	stages  []Stage[T]
	feed    func(T) bool
	end     func()
	stop    func()
	out     []T
	started bool
	ended   bool
}

func (c *chain[T]) attach(stages ...Stage[T]) {
	if c.started {
		panic("csp: stages attached after the channel's first send")
	}
	c.stages = append(c.stages, stages...)
}

func (c *chain[T]) start() {
	c.started = true
	if c.owner != nil {
		c.owner.track(c.release)
	}
	c.feed, c.end, c.stop = coro.Push(func(next func() (T, bool)) {
		src := func(yield func(T) bool) {
			for v, ok := next(); ok; v, ok = next() {
				if !yield(v) {
					return
				}
			}
		}
		for v := range compose(src, c.stages) {
			c.out = append(c.out, v)
		}
	})
}

// push runs v through the stages and returns what reached the end. Once
// a stage stops consuming, pushed values are discarded.
func (c *chain[T]) push(v T) []T {
	if len(c.stages) == 0 {
		return []T{v}
	}
	if !c.started {
		c.start()
	}
	c.out = c.out[:0]
	c.feed(v)
	return slices.Clone(c.out)
}

// flush ends the stages' input so aggregating stages emit what they
// hold, and returns it.
func (c *chain[T]) flush() []T {
	if len(c.stages) == 0 || c.ended {
		return nil
	}
	if !c.started {
		c.start()
	}
	c.ended = true
	c.out = c.out[:0]
	c.end()
	return slices.Clone(c.out)
}

// release stops a chain whose input never ended and puts it back in its
// unstarted state.
func (c *chain[T]) release() {
	if !c.started {
		return
	}
	if !c.ended {
		c.stop()
	}
	c.started, c.ended = false, false
	c.feed, c.end, c.stop = nil, nil, nil
	c.out = nil
}
