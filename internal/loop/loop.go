// Package loop provides the single-threaded cooperative event loop every
// guest entry point runs on.
//
// Concurrency model:
//   - Tasks run one at a time, in post order, on the goroutine that called Run.
//   - Any goroutine may Post; background work re-enters the loop only that way.
//   - Do runs a task and waits for it. Called from a task (detected through the
//     task's context) it runs inline instead of deadlocking.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	wardErrors "github.com/moshez/ward/domain/errors"
)

// Task is a unit of work run on the loop. ctx carries the loop marker.
type Task func(ctx context.Context)

type loopKey struct{}

// OnLoop reports whether ctx belongs to a task currently running on a loop.
func OnLoop(ctx context.Context) bool {
	_, ok := ctx.Value(loopKey{}).(*Loop)
	return ok
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for recovered task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop is a cooperative task queue.
type Loop struct {
	logger  *slog.Logger
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	timers  map[*time.Timer]struct{}
	queue   []Task
	mu      sync.Mutex
	stopped bool
	running bool
}

// New creates a loop. It accepts tasks immediately; they run once Run is
// called.
func New(opts ...Option) *Loop {
	l := &Loop{
		logger: slog.Default(),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks until Stop is called or ctx is done. It must be called
// at most once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		return wardErrors.ErrLoopStopped
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)
	defer l.Stop()

	taskCtx := context.WithValue(ctx, loopKey{}, l)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case <-l.wake:
		}

		for {
			task, ok := l.pop()
			if !ok {
				break
			}
			l.run(taskCtx, task)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (l *Loop) pop() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) run(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.ErrorContext(ctx, "loop: task panicked", "panic", r)
		}
	}()
	task(ctx)
}

// Post queues task. It returns false once the loop has stopped.
func (l *Loop) Post(task Task) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for its result. If ctx already belongs to
// a loop task, fn runs immediately on the caller's goroutine.
func (l *Loop) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if OnLoop(ctx) {
		return fn(ctx)
	}

	result := make(chan error, 1)
	if !l.Post(func(taskCtx context.Context) {
		var err error
		defer func() {
			if r := recover(); r != nil {
				l.logger.ErrorContext(taskCtx, "loop: task panicked", "panic", r)
				err = wardErrors.ErrLoopStopped
			}
			result <- err
		}()
		err = fn(taskCtx)
	}) {
		return wardErrors.ErrLoopStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return wardErrors.ErrLoopStopped
		}
	}
}

// AfterFunc posts task once d has elapsed. The returned function cancels the
// timer and reports whether it was still pending.
func (l *Loop) AfterFunc(d time.Duration, task Task) (cancel func() bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return func() bool { return false }
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		l.Post(task)
	})
	l.timers[t] = struct{}{}

	return func() bool {
		l.mu.Lock()
		delete(l.timers, t)
		l.mu.Unlock()
		return t.Stop()
	}
}

// Pending returns the number of queued tasks and armed timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) + len(l.timers)
}

// Stop drops queued tasks and timers. Tasks already running finish. It is
// safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	for t := range l.timers {
		t.Stop()
	}
	clear(l.timers)
	close(l.stop)
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
