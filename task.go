package csp

import (
	"github.com/webriots/csp/coro"
)

// Yield suspends the calling task and hands control back to its
// scheduler until the scheduler resumes it. A Yield belongs to the task
// it was given to and must not be called from anywhere else.
type Yield func()

// Task is a unit of cooperative execution owned by a Scheduler.
type Task struct {
	id     uint64
	name   string
	co     *coro.Coroutine[struct{}, struct{}]
	waitID uint64
}

func newTask(id uint64, name string, body func(Yield)) *Task {
	t := &Task{id: id, name: name}
	t.co = coro.New(func(_ func(struct{}) struct{}, suspend func() struct{}) struct{} {
		body(func() { suspend() })
		return struct{}{}
	})
	return t
}

// ID returns the task's identifier, unique within its scheduler and
// assigned in spawn order.
func (t *Task) ID() uint64 {
	return t.id
}

// Name returns the name the task was spawned with.
func (t *Task) Name() string {
	return t.name
}

// Done reports whether the task's body has returned.
func (t *Task) Done() bool {
	return t.co.Done()
}
