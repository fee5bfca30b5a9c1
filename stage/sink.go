package stage

import (
	"fmt"
	"io"
	"iter"

	"github.com/webriots/csp"
)

// Out appends every line to dst and passes it on.
func Out(dst *[]string) csp.Stage[string] {
	return csp.Tap(func(line string) { *dst = append(*dst, line) })
}

// Write prints every line to w, one per line, and passes it on.
func Write(w io.Writer) csp.Stage[string] {
	return csp.Tap(func(line string) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			fail("stage: write: %w", err)
		}
	})
}

// AssertCount passes its input on and panics once it ends unless
// exactly n lines went through.
func AssertCount(n int) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			got := 0
			for line := range in {
				got++
				if !yield(line) {
					return
				}
			}
			if got != n {
				fail("%w: got %d lines, want %d", ErrAssertion, got, n)
			}
		}
	}
}

// AssertString panics on the first line that is not want.
func AssertString(want string) csp.Stage[string] {
	return csp.Tap(func(line string) {
		if line != want {
			fail("%w: got line %q, want %q", ErrAssertion, line, want)
		}
	})
}

// AssertStrings panics unless the input is exactly want, line by line.
func AssertStrings(want ...string) csp.Stage[string] {
	return func(in iter.Seq[string]) iter.Seq[string] {
		return func(yield func(string) bool) {
			i := 0
			for line := range in {
				if i >= len(want) {
					fail("%w: unexpected line %d %q", ErrAssertion, i, line)
				}
				if line != want[i] {
					fail("%w: line %d is %q, want %q", ErrAssertion, i, line, want[i])
				}
				i++
				if !yield(line) {
					return
				}
			}
			if i != len(want) {
				fail("%w: got %d lines, want %d", ErrAssertion, i, len(want))
			}
		}
	}
}
