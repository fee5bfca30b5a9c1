// Package csp is a cooperative, single-threaded concurrency runtime
// in the style of communicating sequential processes: tasks scheduled
// round-robin by a Scheduler, counting semaphores built on the
// scheduler's park/wake queues, and typed channels with buffering,
// backpressure and an ordered close protocol.
//
// # Tasks and the Scheduler
//
// A Task is a function run as a coroutine. It receives a Yield, the
// only way for it to give up control. Tasks are spawned onto a
// Scheduler and nothing runs until the scheduler is driven:
//
//	s := csp.NewScheduler()
//	ch := csp.NewChannel[int](s, 8)
//	s.Spawn("producer", func(yield csp.Yield) {
//	    for i := 0; i < 50; i++ {
//	        ch.Send(yield, i)
//	    }
//	    ch.Close(yield)
//	})
//	s.Spawn("consumer", func(yield csp.Yield) {
//	    for v := range csp.Range(yield, ch) {
//	        fmt.Println(v)
//	    }
//	})
//	if err := s.RunUntilComplete(); err != nil {
//	    // errors.Is(err, csp.ErrDeadlock)
//	}
//
// Exactly one task executes at any instant. A task only loses control
// at a Yield, at a Semaphore wait that runs out of count, or inside the
// polling loop of Select and Barrier. A woken task is appended to the
// tail of the running list and runs on the next pass, never
// immediately.
//
// # Channels
//
// A Channel is a FIFO of capacity N built from two semaphores, one
// counting free slots and one counting buffered elements. Capacity
// zero is a strict rendezvous: a send completes only once a receiver
// has taken the value. Close enqueues a sentinel behind every value
// already sent, so receivers drain the buffer before they observe the
// close; after that every receive reports closed. Sending on a closed
// channel silently drops the value.
//
// Stages attached to a channel run inside Send, between the sender and
// the buffer, and may transform, drop or expand values. Stage failures
// are panics; they abort the whole scheduler pass and surface from Run
// as a *TaskError.
//
// # Select, Barrier and Range
//
// Select polls channels left to right and returns the first one with a
// buffered element; lower positions win every tie. Barrier receives
// one value from each channel in order and gives up as soon as any of
// them is closed. Range turns repeated receives into an iterator for
// use in an ordinary for loop.
//
// # Pipelines
//
// A Pipeline is the schedulerless sibling of a channel's stage chain:
// the same stages composed directly over an iterator, with no blocking
// and no close protocol.
//
// Schedulers, channels and semaphores must not be shared between
// independently driven schedulers. Separate schedulers may run on
// separate goroutines.
package csp
