package csp

import (
	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

// entry is a buffered item. The close sentinel is an entry with closed
// set, queued behind every value sent before Close.
type entry[T any] struct {
	v      T
	closed bool
}

// Channel is a typed FIFO of bounded capacity shared by tasks of one
// scheduler.
//
// Free space is counted by the slots semaphore and buffered items by
// the elements semaphore, so a full channel parks senders and an empty
// one parks receivers. A capacity of zero is a strict rendezvous: one
// value is in flight at a time and its sender stays parked until a
// receiver has taken it.
type Channel[T any] struct {
	sched    *Scheduler
	capacity int

	buf      deque.Deque[entry[T]]
	slots    *Semaphore
	elements *Semaphore
	// acks hands a rendezvous sender the news that its value was taken.
	acks *Semaphore
	// writers admits one Send or Close at a time, so the items of an
	// expanding send and the close sentinel never interleave.
	writers *Semaphore

	stages  chain[T]
	closed  bool
	drained bool
}

// NewChannel creates a channel on s holding up to capacity values, with
// stages run on every value between the sender and the buffer.
//
// A channel with stages runs them on a coroutine of its own from the
// first Send or Close. The coroutine is released when the channel is
// closed, or else when s is closed or deadlocks.
func NewChannel[T any](s *Scheduler, capacity int, stages ...Stage[T]) *Channel[T] {
	if capacity < 0 {
		panic("csp: negative channel capacity")
	}
	slots := capacity
	if capacity == 0 {
		slots = 1
	}
	c := &Channel[T]{
		sched:    s,
		capacity: capacity,
		slots:    NewSemaphore(s, slots),
		elements: NewSemaphore(s, 0),
	}
	if capacity == 0 {
		c.acks = NewSemaphore(s, 0)
	}
	c.writers = NewSemaphore(s, 1)
	c.stages.owner = s
	c.stages.attach(stages...)
	return c
}

// Pipeline appends stages to the channel's chain. The new stages run
// after the ones already attached. Stages must be attached before the
// first Send or Close.
func (c *Channel[T]) Pipeline(stages ...Stage[T]) *Channel[T] {
	c.stages.attach(stages...)
	return c
}

// Send passes v through the stages and appends whatever comes out to
// the buffer, parking while the buffer is full. Each delivered value
// wakes one parked receiver. Sending on a closed channel drops v.
//
// Sends are admitted one at a time: a send whose stages produced
// several values delivers all of them before the next send or Close
// starts.
func (c *Channel[T]) Send(yield Yield, v T) {
	if c.closed {
		c.sched.log.Debug("send on closed channel dropped", zap.Uint64("channel", c.elements.id))
		return
	}
	c.writers.Wait(yield)
	c.slots.Wait(yield)
	c.deliver(yield, c.stages.push(v), false)
	c.writers.Notify(yield)
}

// deliver appends items to the buffer, holding one slot already. Every
// item past the first needs a slot of its own; if there are no items
// the held slot is handed back.
func (c *Channel[T]) deliver(yield Yield, items []T, closing bool) {
	if len(items) == 0 {
		if !closing {
			c.slots.Notify(yield)
		}
		return
	}
	for i, v := range items {
		if i > 0 {
			c.slots.Wait(yield)
		}
		c.buf.PushBack(entry[T]{v: v})
		c.elements.Notify(yield)
		if c.acks != nil {
			c.acks.Wait(yield)
		}
	}
	if closing {
		c.slots.Wait(yield)
	}
}

// Close ends the channel. Values sent before Close are still delivered
// in order, including the rest of a send that is parked halfway through
// its expansion; receivers see the close only after the last of them.
// Close takes a slot like a send does and parks while the buffer is
// full. Closing a closed channel does nothing.
func (c *Channel[T]) Close(yield Yield) {
	if c.closed {
		return
	}
	c.closed = true
	c.writers.Wait(yield)
	c.slots.Wait(yield)
	c.deliver(yield, c.stages.flush(), true)
	c.buf.PushBack(entry[T]{closed: true})
	c.elements.Notify(yield)
	c.writers.Notify(yield)
	c.sched.log.Debug("channel closed", zap.Uint64("channel", c.elements.id))
}

// Receive takes the oldest buffered value, parking while the buffer is
// empty. Once the close sentinel is reached it reports closed, now and
// on every later call.
func (c *Channel[T]) Receive(yield Yield) Optional[T] {
	c.elements.Wait(yield)
	e := c.buf.Front()
	if e.closed {
		// The sentinel stays queued and keeps its element count, so every
		// parked or future receiver observes it too.
		c.drained = true
		c.elements.Notify(yield)
		return None[T]()
	}
	c.buf.PopFront()
	c.slots.Notify(yield)
	if c.acks != nil {
		c.acks.Notify(yield)
	}
	return Some(e.v)
}

// Empty reports whether nothing is buffered. A closed channel holding
// its sentinel is not empty: a receive would complete.
func (c *Channel[T]) Empty() bool {
	return c.elements.Count() <= 0
}

// Full reports whether a send would park.
func (c *Channel[T]) Full() bool {
	return c.slots.Count() <= 0
}

// Len returns the number of buffered values, not counting the close
// sentinel.
func (c *Channel[T]) Len() int {
	n := c.buf.Len()
	if n > 0 && c.buf.Back().closed {
		n--
	}
	return n
}

// Cap returns the capacity the channel was created with.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	return c.closed
}

// Drained reports whether a receiver has reached the close sentinel.
func (c *Channel[T]) Drained() bool {
	return c.drained
}
