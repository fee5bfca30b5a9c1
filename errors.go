package csp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeadlock is matched by the error RunUntilComplete returns when
// every remaining task is parked and none can run.
var ErrDeadlock = errors.New("csp: all tasks are asleep - deadlock")

// ParkedTask describes a task that was parked when a deadlock was
// detected.
type ParkedTask struct {
	ID     uint64
	Name   string
	WaitID uint64
}

// DeadlockError reports the tasks left parked when the running list
// emptied. Tasks are ordered by wait-id, then by the order in which
// they parked.
type DeadlockError struct {
	Parked []ParkedTask
}

func (e *DeadlockError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrDeadlock.Error())
	for _, p := range e.Parked {
		fmt.Fprintf(&sb, "\n\ttask %d %q waiting on %d", p.ID, p.Name, p.WaitID)
	}
	return sb.String()
}

func (e *DeadlockError) Unwrap() error {
	return ErrDeadlock
}

// TaskError is what Run panics with when a task body, or a stage it
// drove, panics. Err is the recovered failure; for panics captured by
// the coroutine layer it is a *coro.PanicError carrying the stack.
type TaskError struct {
	ID   uint64
	Name string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("csp: task %d %q failed: %v", e.ID, e.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
