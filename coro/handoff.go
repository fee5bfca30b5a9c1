//go:build !linkname

package coro

// handoff transfers control between a coroutine and its driver over a
// goroutine pair. Both channels are unbuffered, so the sending side
// blocks until the other side has taken over and only one of them ever
// runs.
type handoff struct {
	wake chan struct{}
	park chan struct{}
}

func newHandoff(f func()) handoff {
	h := handoff{
		wake: make(chan struct{}),
		park: make(chan struct{}),
	}
	go func() {
		<-h.wake
		defer func() { h.park <- struct{}{} }()
		f()
	}()
	return h
}

// resume is called by the driver. It returns once the coroutine has
// parked again or finished.
func (h handoff) resume() {
	h.wake <- struct{}{}
	<-h.park
}

// yield is called from inside the coroutine. It returns once the driver
// resumes it.
func (h handoff) yield() {
	h.park <- struct{}{}
	<-h.wake
}
