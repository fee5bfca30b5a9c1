// Package stage provides line-oriented text stages for csp channels
// and pipelines, modeled on the classic Unix filters.
//
// Every stage is a csp.Stage[string] and does its work synchronously.
// Generators (In, Lines, Cat, Find, Ls, Run, Fetch) produce lines;
// filters transform them; sinks (Out, Write) record them and pass them
// on unchanged. A stage that cannot do its job panics with an error,
// which aborts the scheduler pass driving it.
//
//	csp.NewPipeline(
//	    stage.In("hello big world"),
//	    stage.Split(" ", true),
//	    stage.Grep("^b"),
//	    stage.AssertStrings("big"),
//	).Run()
package stage

import (
	"errors"
	"fmt"
	"iter"

	"github.com/webriots/csp"
)

// ErrAssertion is matched by the errors the Assert stages panic with.
var ErrAssertion = errors.New("stage: assertion failed")

func fail(format string, args ...any) {
	panic(fmt.Errorf(format, args...))
}

// lines is the shape shared by stages that expand every input line
// into zero or more output lines.
func lines(f func(line string, yield func(string) bool) bool) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			for line := range in {
				if !f(line, yield) {
					return
				}
			}
		}
	}
}

// source lets a generator take its arguments either directly or, when
// none are given, from its input lines.
func source(args []string, in iter.Seq[string]) iter.Seq[string] {
	if len(args) > 0 {
		return func(yield func(string) bool) {
			for _, a := range args {
				if !yield(a) {
					return
				}
			}
		}
	}
	return in
}
