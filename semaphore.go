package csp

import (
	"go.uber.org/zap"
)

// Semaphore is a counting semaphore whose waiters park on its
// scheduler. A negative count is the number of parked waiters.
type Semaphore struct {
	sched *Scheduler
	id    uint64
	count int
	max   int
}

// NewSemaphore creates a semaphore on s with an initial count.
func NewSemaphore(s *Scheduler, count int) *Semaphore {
	return &Semaphore{sched: s, id: s.newWaitID(), count: count}
}

// NewBoundedSemaphore creates a semaphore whose count never rises above
// max: a Notify that finds the count already at max is dropped. This is
// the "all slots free" gate policy; NewSemaphore is the default.
func NewBoundedSemaphore(s *Scheduler, count, max int) *Semaphore {
	if max < 1 || count > max {
		panic("csp: bounded semaphore needs 1 <= max and count <= max")
	}
	return &Semaphore{sched: s, id: s.newWaitID(), count: count, max: max}
}

// Wait decrements the count. If that leaves it negative there is no
// capacity: the calling task parks on the semaphore until a Notify
// wakes it.
func (m *Semaphore) Wait(yield Yield) {
	m.count--
	if m.count < 0 {
		m.sched.wait(m.id)
		yield()
	}
}

// WaitN calls Wait n times.
func (m *Semaphore) WaitN(yield Yield, n int) {
	for i := 0; i < n; i++ {
		m.Wait(yield)
	}
}

// Notify increments the count and, if a waiter could be parked, moves
// the earliest one back to the scheduler's running list. The notifier
// never blocks; yield is taken for symmetry with Wait.
func (m *Semaphore) Notify(yield Yield) {
	if m.max > 0 && m.count >= m.max {
		m.sched.log.Debug("semaphore at bound", zap.Uint64("wait_id", m.id), zap.Int("max", m.max))
		return
	}
	before := m.count
	m.count++
	if before <= 0 {
		m.sched.notify(m.id)
	}
}

// NotifyN calls Notify n times.
func (m *Semaphore) NotifyN(yield Yield, n int) {
	for i := 0; i < n; i++ {
		m.Notify(yield)
	}
}

// NotifyAll wakes every task parked on the semaphore, in the order
// they parked, and raises the count by as many. It returns how many
// tasks were woken.
func (m *Semaphore) NotifyAll(yield Yield) int {
	if m.count >= 0 {
		return 0
	}
	m.count = 0
	return m.sched.notifyAll(m.id)
}

// Count returns the current count. It is only meaningful between
// suspension points.
func (m *Semaphore) Count() int {
	return m.count
}

// ID returns the wait-id tasks park on.
func (m *Semaphore) ID() uint64 {
	return m.id
}
