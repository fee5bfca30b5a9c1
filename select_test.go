package csp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectPrefersLowestIndex(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	a := NewChannel[int](s, 4)
	b := NewChannel[int](s, 4)
	var got []string
	s.Spawn("fill", func(yield Yield) {
		for i := 1; i <= 3; i++ {
			a.Send(yield, i)
		}
		b.Send(yield, 10)
	})
	s.Spawn("select", func(yield Yield) {
		for i := 0; i < 4; i++ {
			switch Select(yield, a, b) {
			case 0:
				got = append(got, fmt.Sprintf("a%d", a.Receive(yield).Value()))
			case 1:
				got = append(got, fmt.Sprintf("b%d", b.Receive(yield).Value()))
			}
		}
	})

	r.NoError(s.RunUntilComplete())
	r.Equal([]string{"a1", "a2", "a3", "b10"}, got)
}

func TestSelectNonblock(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	a := NewChannel[int](s, 1)
	b := NewChannel[int](s, 1)
	r.Equal(-1, SelectNonblock(a, b))
	r.Equal(-1, SelectNonblock())

	s.Spawn("closer", func(yield Yield) {
		b.Close(yield)
	})
	r.NoError(s.RunUntilComplete())
	r.Equal(1, SelectNonblock(a, b), "a closed channel is ready")
}

func TestSelectWaitsForReadiness(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	a := NewChannel[string](s, 1)
	b := NewChannel[string](s, 1)
	var log []string
	s.Spawn("select", func(yield Yield) {
		i := Select(yield, a, b)
		log = append(log, fmt.Sprintf("ready %d", i))
		log = append(log, b.Receive(yield).Value())
	})
	s.Spawn("late", func(yield Yield) {
		yield()
		yield()
		log = append(log, "sending")
		b.Send(yield, "hello")
	})

	r.NoError(s.RunUntilComplete())
	r.Equal([]string{"sending", "ready 1", "hello"}, log)
}

func TestBarrier(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	chans := []*Channel[int]{
		NewChannel[int](s, 1),
		NewChannel[int](s, 1),
		NewChannel[int](s, 1),
	}
	var got []int
	s.Spawn("barrier", func(yield Yield) {
		got = Barrier(yield, chans...).Value()
	})
	// Fill in reverse so the barrier has to wait on the first channel.
	s.Spawn("fill", func(yield Yield) {
		for i := len(chans) - 1; i >= 0; i-- {
			chans[i].Send(yield, i+1)
			yield()
		}
	})

	r.NoError(s.RunUntilComplete())
	r.Equal([]int{1, 2, 3}, got)
}

func TestBarrierAbortsOnClose(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	a := NewChannel[int](s, 1)
	b := NewChannel[int](s, 1)
	var result Optional[[]int]
	s.Spawn("fill", func(yield Yield) {
		a.Send(yield, 1)
		b.Close(yield)
	})
	s.Spawn("barrier", func(yield Yield) {
		result = Barrier(yield, a, b)
	})

	r.NoError(s.RunUntilComplete())
	r.False(result.Ok())
	r.Zero(a.Len(), "the value taken from a is dropped")
}

func TestBarrier2(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	nums := NewChannel[int](s, 1)
	names := NewChannel[string](s, 1)
	flags := NewChannel[bool](s, 1)
	var pair Pair[int, string]
	var triple Optional[Triple[int, string, bool]]
	s.Spawn("fill", func(yield Yield) {
		names.Send(yield, "x")
		nums.Send(yield, 1)
		nums.Send(yield, 2)
		names.Send(yield, "y")
		flags.Send(yield, true)
		nums.Close(yield)
	})
	s.Spawn("barrier", func(yield Yield) {
		pair = Barrier2(yield, nums, names).Value()
		triple = Barrier3(yield, nums, names, flags)
		r.False(Barrier3(yield, nums, names, flags).Ok())
	})

	r.NoError(s.RunUntilComplete())
	r.Equal(Pair[int, string]{First: 1, Second: "x"}, pair)
	r.Equal(Some(Triple[int, string, bool]{First: 2, Second: "y", Third: true}), triple)
}

func TestRangeAll(t *testing.T) {
	r := require.New(t)

	s := NewScheduler()
	left := NewChannel[int](s, 2)
	right := NewChannel[int](s, 2)
	var rounds [][]int
	s.Spawn("left", func(yield Yield) {
		for i := 0; i < 3; i++ {
			left.Send(yield, i)
		}
		left.Close(yield)
	})
	s.Spawn("right", func(yield Yield) {
		for i := 0; i < 6; i++ {
			right.Send(yield, i*10)
		}
	})
	s.Spawn("zip", func(yield Yield) {
		for vals := range RangeAll(yield, left, right) {
			rounds = append(rounds, vals)
		}
	})

	err := s.RunUntilComplete()
	// right is never closed and its producer is stuck on a full buffer.
	r.ErrorIs(err, ErrDeadlock)
	r.Equal([][]int{{0, 0}, {1, 10}, {2, 20}}, rounds)
}
