package csp

import (
	"iter"
	"slices"

	"github.com/webriots/csp/coro"
)

// Pipeline is a linear chain of stages with no scheduler behind it:
// stages are composed directly over an input sequence and evaluated
// synchronously. It shares its stage algorithm with Channel but has no
// buffering, backpressure or close protocol.
type Pipeline[T any] struct {
	stages []Stage[T]
}

// NewPipeline creates a pipeline from stages, applied left to right.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: slices.Clone(stages)}
}

// Append adds stages to the end of the pipeline.
func (p *Pipeline[T]) Append(stages ...Stage[T]) *Pipeline[T] {
	p.stages = append(p.stages, stages...)
	return p
}

// Apply composes the stages over src. Nothing runs until the returned
// sequence is iterated.
func (p *Pipeline[T]) Apply(src iter.Seq[T]) iter.Seq[T] {
	return compose(src, p.stages)
}

// Collect runs src through the stages and returns everything that comes
// out.
func (p *Pipeline[T]) Collect(src iter.Seq[T]) []T {
	return slices.Collect(p.Apply(src))
}

// Run evaluates the pipeline end to end over an empty input and
// discards its output. The first stage is expected to be a generator,
// such as Generate, and later stages do their work through side effects.
func (p *Pipeline[T]) Run() {
	for range p.Apply(empty[T]) {
	}
}

// Pull returns the pipeline's output over src one value at a time.
// stop releases the pipeline early.
func (p *Pipeline[T]) Pull(src iter.Seq[T]) (next func() (T, bool), stop func()) {
	return coro.Pull(func(yield func(T)) {
		for v := range p.Apply(src) {
			yield(v)
		}
	})
}

func empty[T any](func(T) bool) {}
