package service

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending task created by [Scheduler.ScheduleAfter].
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or
	// was stopped before.
	Stop() bool
}

// Scheduler is the only source of time and background execution for the
// queue manager. Production code uses [NewRealScheduler]; tests use
// [NewFakeScheduler] and move time explicitly.
type Scheduler interface {
	Now() time.Time

	// ScheduleAfter runs task once, d from now.
	ScheduleAfter(d time.Duration, task func()) Timer

	// Go runs task asynchronously.
	Go(task func())
}

// RealScheduler runs tasks on wall-clock timers and goroutines.
type RealScheduler struct {
	wg sync.WaitGroup
}

// NewRealScheduler returns a scheduler backed by the time package.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{}
}

func (s *RealScheduler) Now() time.Time {
	return time.Now()
}

func (s *RealScheduler) ScheduleAfter(d time.Duration, task func()) Timer {
	s.wg.Add(1)
	t := &realTimer{done: s.wg.Done}
	t.timer = time.AfterFunc(d, func() {
		if !t.claim() {
			return
		}
		defer s.wg.Done()
		task()
	})
	return t
}

func (s *RealScheduler) Go(task func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		task()
	}()
}

// Wait blocks until every started task has returned and every pending timer
// has either fired or been stopped.
func (s *RealScheduler) Wait() {
	s.wg.Wait()
}

type realTimer struct {
	timer *time.Timer
	done  func()

	mu      sync.Mutex
	claimed bool
}

// claim makes firing and stopping mutually exclusive so the wait group is
// released exactly once.
func (t *realTimer) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.claimed {
		return false
	}
	t.claimed = true
	return true
}

func (t *realTimer) Stop() bool {
	if !t.claim() {
		return false
	}
	t.timer.Stop()
	t.done()
	return true
}

// FakeScheduler is a virtual clock. Scheduled tasks run synchronously inside
// [FakeScheduler.Advance], and Go runs its task inline.
type FakeScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*fakeTimer
}

// NewFakeScheduler returns a virtual clock starting at start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *FakeScheduler) ScheduleAfter(d time.Duration, task func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &fakeTimer{scheduler: s, at: s.now.Add(d), seq: s.seq, task: task}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *FakeScheduler) Go(task func()) {
	task()
}

// Advance moves the clock forward by d, running every task that comes due
// in time order. Tasks scheduled by running tasks are honoured if they fall
// inside the window.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.popDueLocked(deadline)
		if next == nil {
			s.now = deadline
			s.mu.Unlock()
			return
		}
		s.now = next.at
		s.mu.Unlock()

		next.task()
	}
}

// Pending returns the delays, relative to now, of tasks not yet run.
func (s *FakeScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]time.Duration, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.at.Sub(s.now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *FakeScheduler) popDueLocked(deadline time.Time) *fakeTimer {
	idx := -1
	for i, t := range s.tasks {
		if t.at.After(deadline) {
			continue
		}
		if idx == -1 || t.at.Before(s.tasks[idx].at) || (t.at.Equal(s.tasks[idx].at) && t.seq < s.tasks[idx].seq) {
			idx = i
		}
	}
	if idx == -1 {
		return nil
	}

	t := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	return t
}

func (s *FakeScheduler) remove(t *fakeTimer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, pending := range s.tasks {
		if pending == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTimer struct {
	scheduler *FakeScheduler
	at        time.Time
	seq       int
	task      func()
}

func (t *fakeTimer) Stop() bool {
	return t.scheduler.remove(t)
}
