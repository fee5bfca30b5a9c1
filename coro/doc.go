// Package coro provides the resumable unit of execution that the csp
// scheduler is built on: a coroutine that runs until it explicitly
// suspends, and is continued later by whoever drives it.
//
// A Coroutine is created with New. Its function receives two
// suspension capabilities: yield hands a value back to the driver and
// pauses, suspend pauses without producing anything. Both return the
// value the driver passes to the next Resume.
//
// Two shapes are layered on top for stage chains:
//
//   - Pull: a generator. The driver asks for the next produced value.
//   - Push: a sink. The driver feeds a value and the coroutine runs
//     until it asks for the next one.
//
// Control moves between the driver and the coroutine through a
// handoff. The default handoff parks a dedicated goroutine on an
// unbuffered channel, so exactly one side runs at a time. Building
// with -tags linkname switches to the Go runtime's own coroutine
// switch (the one powering iter.Pull), which is cheaper but requires
// linking with -ldflags=-checklinkname=0.
//
// Panics inside a coroutine are captured together with their stack
// and re-raised in the driver on the Resume that observed them.
package coro
