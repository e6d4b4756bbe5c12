package trellis

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// TaskHandle identifies a scheduled task. The zero handle is never issued.
type TaskHandle uint64

// Scheduler runs tasks periodically or after a delay. Tasks run on
// scheduler-owned goroutines; anything touching widgets must go through
// Display.Update (Context.Do).
type Scheduler interface {
	// Schedule runs task every interval, starting at the next wall-clock
	// multiple of interval.
	Schedule(interval time.Duration, task func()) TaskHandle
	// ScheduleOnce runs task once after delay.
	ScheduleOnce(delay time.Duration, task func()) TaskHandle
	// Cancel stops a task. It reports whether the task was still pending.
	Cancel(h TaskHandle) bool
}

// TaskError reports a task that panicked.
type TaskError struct {
	Handle TaskHandle
	Value  any
	Stack  []byte
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("trellis: task %d panicked: %v", e.Handle, e.Value)
}

// NextBoundary returns the first multiple of interval since the Unix epoch
// that lies strictly after now.
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}
	ns := now.UnixNano()
	iv := int64(interval)
	return time.Unix(0, (ns/iv+1)*iv)
}

// TaskScheduler is the production Scheduler. Each task gets its own
// goroutine and timer. A panicking task is logged and reported on Errors
// while its periodic series continues.
type TaskScheduler struct {
	logger *slog.Logger
	errs   chan error

	mu     sync.Mutex
	next   TaskHandle
	tasks  map[TaskHandle]chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewTaskScheduler creates a scheduler. A nil logger uses slog.Default.
func NewTaskScheduler(logger *slog.Logger) *TaskScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskScheduler{
		logger: logger,
		errs:   make(chan error, 16),
		tasks:  make(map[TaskHandle]chan struct{}),
	}
}

// Errors delivers task panics. Delivery is best effort: when nobody reads,
// errors beyond the buffer are dropped after being logged.
func (s *TaskScheduler) Errors() <-chan error { return s.errs }

func (s *TaskScheduler) add() (TaskHandle, chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, false
	}
	s.next++
	stop := make(chan struct{})
	s.tasks[s.next] = stop
	s.wg.Add(1)
	return s.next, stop, true
}

func (s *TaskScheduler) done(h TaskHandle) {
	s.mu.Lock()
	delete(s.tasks, h)
	s.mu.Unlock()
}

// Schedule implements Scheduler.
func (s *TaskScheduler) Schedule(interval time.Duration, task func()) TaskHandle {
	if interval <= 0 {
		panic("trellis: schedule interval must be positive")
	}
	h, stop, ok := s.add()
	if !ok {
		return 0
	}
	go func() {
		defer s.wg.Done()
		defer s.done(h)
		next := NextBoundary(time.Now(), interval)
		timer := time.NewTimer(time.Until(next))
		defer timer.Stop()
		for {
			select {
			case <-stop:
				return
			case <-timer.C:
			}
			s.run(h, task)
			next = next.Add(interval)
			if now := time.Now(); !next.After(now) {
				// Fell behind; skip the missed runs.
				next = NextBoundary(now, interval)
			}
			timer.Reset(time.Until(next))
		}
	}()
	return h
}

// ScheduleOnce implements Scheduler.
func (s *TaskScheduler) ScheduleOnce(delay time.Duration, task func()) TaskHandle {
	h, stop, ok := s.add()
	if !ok {
		return 0
	}
	go func() {
		defer s.wg.Done()
		defer s.done(h)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		s.run(h, task)
	}()
	return h
}

// Cancel implements Scheduler.
func (s *TaskScheduler) Cancel(h TaskHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stop, ok := s.tasks[h]
	if !ok {
		return false
	}
	delete(s.tasks, h)
	close(stop)
	return true
}

// Close cancels every task and waits for running tasks to return.
func (s *TaskScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for h, stop := range s.tasks {
		delete(s.tasks, h)
		close(stop)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *TaskScheduler) run(h TaskHandle, task func()) {
	defer func() {
		if r := recover(); r != nil {
			err := &TaskError{Handle: h, Value: r, Stack: debug.Stack()}
			s.logger.Error("scheduled task panicked", "task", uint64(h), "panic", fmt.Sprint(r))
			select {
			case s.errs <- err:
			default:
			}
		}
	}()
	task()
}

// ManualScheduler is a deterministic Scheduler driven by Advance. Tasks run
// on the goroutine calling Advance. It is meant for tests and for stepping
// a display frame by frame.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	next  TaskHandle
	tasks map[TaskHandle]*manualTask
}

type manualTask struct {
	handle   TaskHandle
	due      time.Time
	interval time.Duration
	fn       func()
}

// NewManualScheduler creates a manual scheduler whose clock starts at now.
func NewManualScheduler(now time.Time) *ManualScheduler {
	return &ManualScheduler{now: now, tasks: make(map[TaskHandle]*manualTask)}
}

// Now returns the scheduler's clock.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Schedule implements Scheduler.
func (m *ManualScheduler) Schedule(interval time.Duration, task func()) TaskHandle {
	if interval <= 0 {
		panic("trellis: schedule interval must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(NextBoundary(m.now, interval), interval, task)
}

// ScheduleOnce implements Scheduler.
func (m *ManualScheduler) ScheduleOnce(delay time.Duration, task func()) TaskHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(m.now.Add(delay), 0, task)
}

func (m *ManualScheduler) addLocked(due time.Time, interval time.Duration, fn func()) TaskHandle {
	m.next++
	m.tasks[m.next] = &manualTask{handle: m.next, due: due, interval: interval, fn: fn}
	return m.next
}

// Cancel implements Scheduler.
func (m *ManualScheduler) Cancel(h TaskHandle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[h]; !ok {
		return false
	}
	delete(m.tasks, h)
	return true
}

// Advance moves the clock forward by d, running every task that falls due
// in order of due time. Tasks may schedule or cancel other tasks.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.mu.Lock()
		t := m.earliestLocked(end)
		if t == nil {
			m.now = end
			m.mu.Unlock()
			return
		}
		m.now = t.due
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
		} else {
			delete(m.tasks, t.handle)
		}
		m.mu.Unlock()
		t.fn()
	}
}

func (m *ManualScheduler) earliestLocked(end time.Time) *manualTask {
	due := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.due.After(end) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].handle < due[j].handle
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}
