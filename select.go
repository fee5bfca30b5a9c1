package csp

import "iter"

// Selectable is anything Select can poll. Every *Channel is one.
type Selectable interface {
	Empty() bool
}

// SelectNonblock returns the index of the first channel, scanning left
// to right, that has an element ready to receive, or -1 if none has.
// A closed channel is always ready. Earlier positions always win, so a
// busy channel can starve the ones after it.
func SelectNonblock(chans ...Selectable) int {
	for i, ch := range chans {
		if !ch.Empty() {
			return i
		}
	}
	return -1
}

// Select polls the channels with SelectNonblock, yielding between
// polls, until one is ready, and returns its index. It never parks: the
// task stays on the running list while it polls, so a select nobody
// will ever satisfy spins rather than being reported as a deadlock.
func Select(yield Yield, chans ...Selectable) int {
	for {
		if i := SelectNonblock(chans...); i >= 0 {
			return i
		}
		yield()
	}
}

// Barrier receives one value from each channel, in order, waiting for
// each in turn. If any channel turns out to be closed it stops there and
// returns the closed result; values already taken from earlier channels
// in this call are lost.
func Barrier[T any](yield Yield, chans ...*Channel[T]) Optional[[]T] {
	vals := make([]T, 0, len(chans))
	for _, ch := range chans {
		v, ok := barrierReceive(yield, ch)
		if !ok {
			return None[[]T]()
		}
		vals = append(vals, v)
	}
	return Some(vals)
}

func barrierReceive[T any](yield Yield, ch *Channel[T]) (T, bool) {
	Select(yield, ch)
	return ch.Receive(yield).Get()
}

// Pair is the result of Barrier2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of Barrier3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Barrier2 is Barrier over two channels of different types.
func Barrier2[A, B any](yield Yield, a *Channel[A], b *Channel[B]) Optional[Pair[A, B]] {
	va, ok := barrierReceive(yield, a)
	if !ok {
		return None[Pair[A, B]]()
	}
	vb, ok := barrierReceive(yield, b)
	if !ok {
		return None[Pair[A, B]]()
	}
	return Some(Pair[A, B]{First: va, Second: vb})
}

// Barrier3 is Barrier over three channels of different types.
func Barrier3[A, B, C any](yield Yield, a *Channel[A], b *Channel[B], c *Channel[C]) Optional[Triple[A, B, C]] {
	ab := Barrier2(yield, a, b)
	pair, ok := ab.Get()
	if !ok {
		return None[Triple[A, B, C]]()
	}
	vc, ok := barrierReceive(yield, c)
	if !ok {
		return None[Triple[A, B, C]]()
	}
	return Some(Triple[A, B, C]{First: pair.First, Second: pair.Second, Third: vc})
}

// Range receives from ch until it is closed. The sequence is meant to
// be consumed by a for loop inside the task that owns yield; breaking
// out early leaves the remaining values in the channel.
func Range[T any](yield Yield, ch *Channel[T]) iter.Seq[T] {
	return func(emit func(T) bool) {
		for {
			v, ok := ch.Receive(yield).Get()
			if !ok || !emit(v) {
				return
			}
		}
	}
}

// RangeAll runs Barrier over chans until any of them is closed,
// producing one slice per round.
func RangeAll[T any](yield Yield, chans ...*Channel[T]) iter.Seq[[]T] {
	return func(emit func([]T) bool) {
		for {
			vals, ok := Barrier(yield, chans...).Get()
			if !ok || !emit(vals) {
				return
			}
		}
	}
}
