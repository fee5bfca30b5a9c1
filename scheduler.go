package csp

import (
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler owns a set of tasks and runs them cooperatively, one at a
// time, in round-robin order. Every live task is either on the running
// list or parked in exactly one wait queue, keyed by a wait-id.
//
// A Scheduler is not safe for concurrent use. It is driven by a single
// goroutine calling Run, RunUntilComplete or RunForever, and only tasks
// running under it may touch the channels and semaphores built on it.
type Scheduler struct {
	id  uuid.UUID
	log *zap.Logger

	running deque.Deque[*Task]
	// incoming collects tasks spawned or woken during a pass; they join
	// the tail of the running list once the pass ends.
	incoming deque.Deque[*Task]
	blocked  map[uint64]*deque.Deque[*Task]

	current *Task
	parking bool
	parkID  uint64
	inPass  bool

	nextTaskID uint64
	nextWaitID uint64

	// releases free resources held outside any task, such as the
	// coroutines of channel stages. They run on Close and on deadlock.
	releases []func()
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scheduler{
		id:      cfg.id,
		log:     cfg.logger.With(zap.Stringer("scheduler", cfg.id)),
		blocked: make(map[uint64]*deque.Deque[*Task]),
	}
}

// ID returns the scheduler's identity.
func (s *Scheduler) ID() uuid.UUID {
	return s.id
}

// Spawn wraps body as a task and appends it to the running list. The
// body does not start until the next pass reaches it; a task spawned by
// another task runs from the following pass on. An empty name becomes
// "anonymous".
func (s *Scheduler) Spawn(name string, body func(yield Yield)) *Task {
	if name == "" {
		name = "anonymous"
	}
	t := newTask(s.nextTaskID, name, body)
	s.nextTaskID++
	s.enqueue(t)
	s.log.Debug("task spawned", zap.Uint64("task_id", t.id), zap.String("task", t.name))
	return t
}

func (s *Scheduler) enqueue(t *Task) {
	if s.inPass {
		s.incoming.PushBack(t)
		return
	}
	s.running.PushBack(t)
}

// Run makes one pass over the running list in order, resuming each task
// until it yields, parks or finishes. Parked tasks move to the wait
// queue they asked for and finished tasks are dropped. It reports
// whether any task is left on the running list afterwards.
//
// If a task panics, Run panics with a *TaskError after removing the
// failed task; the tasks it had not reached yet stay runnable.
func (s *Scheduler) Run() bool {
	if s.inPass {
		panic("csp: Run called from inside a task")
	}
	s.pass()
	return s.running.Len() > 0
}

func (s *Scheduler) pass() {
	s.inPass = true
	defer func() {
		s.inPass = false
		for s.incoming.Len() > 0 {
			s.running.PushBack(s.incoming.PopFront())
		}
	}()

	n := s.running.Len()
	s.log.Debug("pass begin", zap.Int("running", n), zap.Int("blocked", s.Blocked()))
	for i := 0; i < n; i++ {
		t := s.running.PopFront()
		if t.Done() {
			continue
		}
		s.step(t)
		switch {
		case t.Done():
			s.log.Debug("task finished", zap.Uint64("task_id", t.id), zap.String("task", t.name))
		case s.parking:
			s.park(t, s.parkID)
		default:
			s.running.PushBack(t)
		}
	}
	s.log.Debug("pass end", zap.Int("running", s.running.Len()+s.incoming.Len()))
}

func (s *Scheduler) step(t *Task) {
	s.current = t
	s.parking = false
	defer func() {
		s.current = nil
		if p := recover(); p != nil {
			s.parking = false
			err := &TaskError{ID: t.id, Name: t.name, Err: asError(p)}
			s.log.Error("task failed", zap.Uint64("task_id", t.id), zap.String("task", t.name), zap.Error(err.Err))
			panic(err)
		}
	}()
	t.co.Resume(struct{}{})
}

func asError(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("%v", p)
}

func (s *Scheduler) park(t *Task, id uint64) {
	q, ok := s.blocked[id]
	if !ok {
		q = new(deque.Deque[*Task])
		s.blocked[id] = q
	}
	t.waitID = id
	q.PushBack(t)
	s.log.Debug("task blocked", zap.Uint64("task_id", t.id), zap.String("task", t.name), zap.Uint64("wait_id", id))
}

// RunUntilComplete runs passes until no task is left on the running
// list. If tasks are still parked at that point nothing can ever wake
// them: they are canceled and a *DeadlockError naming them is returned.
func (s *Scheduler) RunUntilComplete() error {
	for s.Run() {
	}
	if len(s.blocked) == 0 {
		return nil
	}
	return s.deadlock()
}

func (s *Scheduler) deadlock() error {
	ids := slices.Sorted(maps.Keys(s.blocked))

	err := &DeadlockError{}
	var parked []*Task
	for _, id := range ids {
		q := s.blocked[id]
		for i := 0; i < q.Len(); i++ {
			t := q.At(i)
			err.Parked = append(err.Parked, ParkedTask{ID: t.id, Name: t.name, WaitID: id})
			parked = append(parked, t)
		}
	}
	clear(s.blocked)

	s.log.Error("deadlock", zap.Int("parked", len(parked)), zap.Error(err))
	for _, t := range parked {
		s.cancel(t)
	}
	s.release()
	return err
}

// RunForever drives the scheduler indefinitely, for long-lived services
// whose tasks are woken from outside a pass. It never returns.
func (s *Scheduler) RunForever() {
	for {
		if !s.Run() {
			runtime.Gosched()
		}
	}
}

// Close cancels every task the scheduler still owns, running or parked,
// so their coroutines unwind and release their resources, then stops
// the stages of channels that were never closed. A scheduler is empty
// after Close and may be reused.
func (s *Scheduler) Close() {
	if s.inPass {
		panic("csp: Close called from inside a task")
	}
	var all []*Task
	for s.running.Len() > 0 {
		all = append(all, s.running.PopFront())
	}
	for _, id := range slices.Sorted(maps.Keys(s.blocked)) {
		q := s.blocked[id]
		for q.Len() > 0 {
			all = append(all, q.PopFront())
		}
	}
	clear(s.blocked)
	for _, t := range all {
		s.cancel(t)
	}
	s.release()
}

// track registers f to run on the next Close or deadlock.
func (s *Scheduler) track(f func()) {
	s.releases = append(s.releases, f)
}

func (s *Scheduler) release() {
	fs := s.releases
	s.releases = nil
	for _, f := range fs {
		func() {
			defer func() {
				if p := recover(); p != nil {
					s.log.Warn("release failed", zap.Error(asError(p)))
				}
			}()
			f()
		}()
	}
}

func (s *Scheduler) cancel(t *Task) {
	s.current = t
	defer func() {
		s.current = nil
		if p := recover(); p != nil {
			s.log.Warn("task failed while canceled", zap.Uint64("task_id", t.id), zap.String("task", t.name), zap.Error(asError(p)))
		}
	}()
	t.co.Cancel()
}

// wait marks the running task to be parked on id once it next suspends.
func (s *Scheduler) wait(id uint64) {
	if s.current == nil {
		panic("csp: wait called outside of a running task")
	}
	s.parking = true
	s.parkID = id
}

// notify moves the earliest task parked on id to the tail of the
// running list. The woken task does not run until the next pass. It
// reports whether a task was waiting.
func (s *Scheduler) notify(id uint64) bool {
	q, ok := s.blocked[id]
	if !ok {
		return false
	}
	t := q.PopFront()
	if q.Len() == 0 {
		delete(s.blocked, id)
	}
	s.enqueue(t)
	s.log.Debug("task woken", zap.Uint64("task_id", t.id), zap.String("task", t.name), zap.Uint64("wait_id", id))
	return true
}

// notifyAll wakes every task parked on id, in the order they parked.
func (s *Scheduler) notifyAll(id uint64) int {
	n := 0
	for s.notify(id) {
		n++
	}
	return n
}

func (s *Scheduler) newWaitID() uint64 {
	s.nextWaitID++
	return s.nextWaitID
}

// Current returns the task that is executing, or nil when called from
// outside a pass.
func (s *Scheduler) Current() *Task {
	return s.current
}

// Running returns the number of tasks eligible to run, including those
// spawned or woken during the current pass.
func (s *Scheduler) Running() int {
	return s.running.Len() + s.incoming.Len()
}

// Blocked returns the number of parked tasks.
func (s *Scheduler) Blocked() int {
	n := 0
	for _, q := range s.blocked {
		n += q.Len()
	}
	return n
}
