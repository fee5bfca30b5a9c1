//go:build linkname

package coro

import (
	_ "unsafe"
)

// coroutine is the runtime's coroutine. It is opaque and only ever
// handled through newcoro and coroswitch.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// handoff switches between a coroutine and its driver with the runtime
// coroutine switch. The switch is symmetric: the same call resumes the
// coroutine from the driver and returns to the driver from inside.
type handoff struct {
	c *coroutine
}

func newHandoff(f func()) handoff {
	return handoff{c: newcoro(func(*coroutine) { f() })}
}

func (h handoff) resume() {
	coroswitch(h.c)
}

func (h handoff) yield() {
	coroswitch(h.c)
}
