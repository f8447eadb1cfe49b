// Package completion routes the results of asynchronous host operations back
// to the guest.
//
// Every started operation is recorded as outstanding under its token. Its
// result, success or failure, is posted to the host loop and delivered
// exactly once. Once the router is closed, late results are dropped silently.
package completion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/internal/loop"
)

// Deliverer hands a result to the guest. It runs on the host loop.
type Deliverer func(ctx context.Context, op Op, token entities.Token, res Result)

// Work performs an operation off the loop.
type Work func(ctx context.Context) Result

type key struct {
	op    string
	token entities.Token
}

// Router tracks outstanding tokens.
type Router struct {
	loop    *loop.Loop
	deliver Deliverer
	logger  *slog.Logger
	pending map[key]int
	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter creates a router delivering through deliver on l.
func NewRouter(l *loop.Loop, deliver Deliverer, opts ...Option) *Router {
	r := &Router{
		loop:    l,
		deliver: deliver,
		logger:  slog.Default(),
		pending: make(map[key]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// completion is the single-use handle for one outstanding operation.
type completion struct {
	r     *Router
	op    Op
	token entities.Token
	once  sync.Once
}

func (r *Router) begin(op Op, token entities.Token) *completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.pending[key{op.Name, token}]++
	return &completion{r: r, op: op, token: token}
}

func (c *completion) resolve(res Result) {
	c.once.Do(func() {
		if !c.r.loop.Post(func(ctx context.Context) { c.r.finish(ctx, c.op, c.token, res) }) {
			c.r.forget(c.op, c.token)
		}
	})
}

func (r *Router) forget(op Op, token entities.Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{op.Name, token}
	n, ok := r.pending[k]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.pending, k)
	} else {
		r.pending[k] = n - 1
	}
	return !r.closed
}

func (r *Router) finish(ctx context.Context, op Op, token entities.Token, res Result) {
	if !r.forget(op, token) {
		r.logger.DebugContext(ctx, "completion: dropped", "op", op.Name, "token", token)
		return
	}
	r.deliver(ctx, op, token, res)
}

// Go starts work in its own goroutine and delivers its result. A panic in
// work is delivered as op's failure result.
func (r *Router) Go(ctx context.Context, op Op, token entities.Token, work Work) {
	c := r.begin(op, token)
	if c == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		var res Result
		defer func() {
			if p := recover(); p != nil {
				r.logger.ErrorContext(ctx, "completion: operation panicked",
					"op", op.Name, "panic", fmt.Sprint(p))
				res = Failure(op)
			}
			c.resolve(res)
		}()
		res = work(ctx)
	}()
}

// Resolve completes an operation whose result is already known. Delivery
// still happens on a later loop turn, never inside the current guest call.
func (r *Router) Resolve(op Op, token entities.Token, res Result) {
	if c := r.begin(op, token); c != nil {
		c.resolve(res)
	}
}

// Fail completes an operation with its failure result.
func (r *Router) Fail(op Op, token entities.Token) {
	r.Resolve(op, token, Failure(op))
}

// After delivers an argument-less completion once d has elapsed.
func (r *Router) After(d time.Duration, op Op, token entities.Token) {
	c := r.begin(op, token)
	if c == nil {
		return
	}
	c.once.Do(func() {
		r.loop.AfterFunc(d, func(ctx context.Context) { r.finish(ctx, op, token, Result{}) })
	})
}

// Outstanding returns the number of operations not yet delivered.
func (r *Router) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.pending {
		n += c
	}
	return n
}

// Close stops delivery. Operations still running finish in the background
// and their results are discarded.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	clear(r.pending)
}

// Wait blocks until every goroutine started by Go has returned.
func (r *Router) Wait() {
	r.wg.Wait()
}
