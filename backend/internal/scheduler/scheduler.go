// Package scheduler runs one-shot tasks at a wall-clock time.
//
// Tasks are keyed; scheduling a key that is already queued replaces the
// earlier task. A single goroutine started by Run sleeps until the earliest
// deadline, so there is no per-task timer or goroutine.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/parley-chat/parley/shared/logger"
)

type Task = func(ctx context.Context)

type item struct {
	key   string
	at    time.Time
	task  Task
	index int
}

type taskHeap []*item

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].key < h[j].key
	}
	return h[i].at.Before(h[j].at)
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

type Scheduler struct {
	mu    sync.Mutex
	queue taskHeap
	byKey map[string]*item
	wake  chan struct{}
	now   func() time.Time
}

func New(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		byKey: make(map[string]*item),
		wake:  make(chan struct{}, 1),
		now:   now,
	}
}

// Schedule queues task to run at or after at.
func (s *Scheduler) Schedule(key string, at time.Time, task Task) {
	s.mu.Lock()
	if existing, ok := s.byKey[key]; ok {
		existing.at = at
		existing.task = task
		heap.Fix(&s.queue, existing.index)
	} else {
		it := &item{key: key, at: at, task: task}
		heap.Push(&s.queue, it)
		s.byKey[key] = it
	}
	s.mu.Unlock()
	s.poke()
}

// Cancel removes a queued task. It reports false if key was not queued.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.byKey[key]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, it.index)
	delete(s.byKey, key)
	return true
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// popDue removes and returns every task due at now, earliest first.
func (s *Scheduler) popDue(now time.Time) []*item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*item
	for s.queue.Len() > 0 && !s.queue[0].at.After(now) {
		it := heap.Pop(&s.queue).(*item)
		delete(s.byKey, it.key)
		due = append(due, it)
	}
	return due
}

// RunDue runs every task due at now on the calling goroutine and returns how
// many ran.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) int {
	due := s.popDue(now)
	for _, it := range due {
		it.task(ctx)
	}
	return len(due)
}

func (s *Scheduler) nextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Time{}, false
	}
	return s.queue[0].at, true
}

// Run executes tasks as they come due until ctx is cancelled. Tasks still
// queued on shutdown are dropped; callers reschedule them on next start.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Component("scheduler")
	log.Info("scheduler started")

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if n := s.RunDue(ctx, s.now()); n > 0 {
			log.Debug("ran due tasks", "count", n)
		}

		wait := time.Hour
		if at, ok := s.nextDeadline(); ok {
			wait = max(at.Sub(s.now()), 0)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
		case <-s.wake:
		case <-ctx.Done():
			log.Info("scheduler shutting down gracefully", "pending", s.Len())
			return
		}
	}
}

// Start runs Run in its own goroutine. The returned func blocks until Run has
// returned, including any task that was executing when ctx was cancelled.
func (s *Scheduler) Start(ctx context.Context) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() { <-done }
}
