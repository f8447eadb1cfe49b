package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"

	"github.com/moshez/ward/domain/entities"
	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/host/completion"
	"github.com/moshez/ward/host/listeners"
	"github.com/moshez/ward/host/registry"
	"github.com/moshez/ward/host/stash"
	"github.com/moshez/ward/hostfuncs"
	"github.com/moshez/ward/infrastructure/htmldom"
	wazeroinfra "github.com/moshez/ward/infrastructure/wazero"
	"github.com/moshez/ward/internal/loop"
	wardlog "github.com/moshez/ward/log"
)

// DefaultMaxFlushBytes caps a single mutation flush unless configured.
const DefaultMaxFlushBytes = 16 * 1024 * 1024

// Session is one guest instance bridged to a host document.
type Session struct {
	// Capabilities. Nil ones complete every request with its failure shape.
	doc       ports.Document
	root      ports.Node
	window    ports.Window
	kv        ports.KVStore
	http      ports.HTTPClient
	clipboard ports.Clipboard
	files     ports.FilePicker
	notifier  ports.Notifier
	push      ports.PushService
	policy    ports.Policy

	logger      *slog.Logger
	guestLogger *slog.Logger
	stdout      io.Writer
	stderr      io.Writer

	loop        *loop.Loop
	router      *completion.Router
	registry    *registry.Registry
	stash       *stash.Stash
	listeners   *listeners.Table
	fileHandles *hostfuncs.HandleTable
	blobHandles *hostfuncs.HandleTable
	objectURLs  *hostfuncs.ObjectURLs
	imageURLs   map[entities.NodeID]string
	// unpulled holds the last entry staged by each import that returns a
	// payload length, so a payload the guest skipped is dropped on the next
	// call.
	unpulled map[string]entities.StashID

	runtime wazero.Runtime
	guest   ports.Guest
	runCtx  context.Context
	cancel  context.CancelFunc

	// event is the event currently being delivered, for prevent-default.
	event *ports.Event

	done      chan struct{}
	name      string
	origin    string
	endOnce   sync.Once
	closeOnce sync.Once
	closeErr  error

	maxFlush        int
	decompressLimit int

	mu      sync.Mutex
	state   entities.SessionState
	started bool
	wasi    bool
}

// NewSession creates a session. Without WithDocument it renders into a
// fresh default document whose #ward-root element is node 0.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{
		logger:          slog.Default(),
		name:            "ward",
		maxFlush:        DefaultMaxFlushBytes,
		decompressLimit: hostfuncs.DefaultMaxDecompressedSize,
		imageURLs:       make(map[entities.NodeID]string),
		unpulled:        make(map[string]entities.StashID),
		fileHandles:     hostfuncs.NewHandleTable(),
		blobHandles:     hostfuncs.NewHandleTable(),
		stash:           stash.New(),
		done:            make(chan struct{}),
		stdout:          io.Discard,
		stderr:          io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.name)
	s.guestLogger = wardlog.GuestLogger(s.logger)

	if s.doc == nil {
		doc, err := htmldom.ParseString("")
		if err != nil {
			return nil, fmt.Errorf("default document: %w", err)
		}
		s.doc = doc
		s.root = doc.Find("#ward-root")
	}
	if s.root == nil {
		return nil, &wardErrors.ConfigError{Field: "root", Err: errors.New("document root node is required")}
	}

	if s.origin == "" && s.window != nil {
		if o, ok := s.window.(interface{ Origin() string }); ok {
			s.origin = o.Origin()
		}
	}
	s.objectURLs = hostfuncs.NewObjectURLs(s.origin)

	table, err := listeners.New()
	if err != nil {
		return nil, fmt.Errorf("listener table: %w", err)
	}
	s.listeners = table

	s.registry = registry.New(s.doc, s.root, registry.WithReleaseHook(s.releaseNode))
	s.loop = loop.New(loop.WithLogger(s.logger))
	s.router = completion.NewRouter(s.loop, s.deliver, completion.WithLogger(s.logger))
	s.runCtx, s.cancel = context.WithCancel(wazeroinfra.WithSessionName(context.Background(), s.name))
	return s, nil
}

// State returns the lifecycle state.
func (s *Session) State() entities.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st entities.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) running() bool {
	return s.State() == entities.SessionRunning
}

// Done is closed once the guest ends its session or the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start instantiates wasm and runs its init export with the root id. It
// returns once init has returned; the session keeps running on its loop
// until the guest ends it or Close is called.
func (s *Session) Start(ctx context.Context, wasm []byte) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	err := s.loop.Do(ctx, func(ctx context.Context) error {
		guest, err := s.instantiate(ctx, wasm)
		if err != nil {
			return err
		}
		return s.attach(ctx, guest)
	})
	if err != nil {
		s.end(ctx)
		return err
	}
	return nil
}

// begin moves an uninitialized session to Instantiating and starts its loop.
func (s *Session) begin(ctx context.Context) error {
	s.mu.Lock()
	if s.state != entities.SessionUninitialized {
		got := s.state
		s.mu.Unlock()
		return &wardErrors.StateError{Operation: "start", Want: entities.SessionUninitialized.String(), Got: got.String()}
	}
	s.state = entities.SessionInstantiating
	s.started = true
	s.mu.Unlock()

	go func() {
		if err := s.loop.Run(s.runCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.ErrorContext(ctx, "host loop stopped", "error", err)
		}
	}()
	return nil
}

func (s *Session) instantiate(ctx context.Context, wasm []byte) (ports.Guest, error) {
	rt, err := newRuntime(ctx, s.wasi)
	if err != nil {
		return nil, err
	}
	s.runtime = rt

	fns := s.imports()
	_, err = wazeroinfra.RegisterWithRuntime(ctx, rt, fns,
		wazeroinfra.WithMiddleware(
			wazeroinfra.Recover(s.logger, wazeroinfra.FaultResults(fns)),
			wazeroinfra.Trace(s.logger),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}
	return instantiateGuest(ctx, rt, wasm, s.stdout, s.stderr)
}

// attach binds an instantiated guest and runs its init export. It runs on
// the loop.
func (s *Session) attach(ctx context.Context, guest ports.Guest) error {
	s.guest = guest
	if guest.HasExport(entities.ExportInitialize) {
		if err := guest.Call(ctx, entities.ExportInitialize); err != nil {
			if s.exited(ctx, err) {
				return nil
			}
			return err
		}
	}

	s.setState(entities.SessionRunning)
	s.logger.DebugContext(ctx, "session running")

	if err := guest.Call(ctx, entities.ExportInit, int32(entities.RootID)); err != nil {
		if s.exited(ctx, err) || errors.Is(err, wardErrors.ErrExportNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// call invokes a guest export. Failures are logged and never propagate; a
// guest exit ends the session.
func (s *Session) call(ctx context.Context, export string, args ...int32) bool {
	if s.guest == nil || s.State() == entities.SessionEnded {
		return false
	}
	err := s.guest.Call(ctx, export, args...)
	if err == nil {
		return true
	}
	if errors.Is(err, wardErrors.ErrExportNotFound) {
		s.logger.DebugContext(ctx, "guest export missing", "export", export)
		return false
	}
	if !s.exited(ctx, err) {
		s.logger.ErrorContext(ctx, "guest call failed", "export", export, "error", err)
	}
	return false
}

// exited ends the session when err is a guest exit.
func (s *Session) exited(ctx context.Context, err error) bool {
	var exit *sys.ExitError
	if !errors.As(err, &exit) {
		return false
	}
	s.logger.InfoContext(ctx, "guest exited", "code", exit.ExitCode())
	s.end(ctx)
	return true
}

// end moves the session to Ended. Outstanding completions are discarded.
func (s *Session) end(ctx context.Context) {
	s.endOnce.Do(func() {
		s.setState(entities.SessionEnded)
		s.router.Close()
		close(s.done)
		s.logger.DebugContext(ctx, "session ended")
	})
}

// deliver hands a completion to the guest. It runs on the loop.
func (s *Session) deliver(ctx context.Context, op completion.Op, token entities.Token, res completion.Result) {
	if !s.running() {
		return
	}
	if len(res.Payload) > 0 {
		s.stage(ctx, res.Payload)
	}
	args := make([]int32, 0, 1+len(res.Args))
	args = append(args, int32(token))
	args = append(args, res.Args...)
	s.call(ctx, op.Export, args...)
}

// stage puts data in the stash and reports its id and length through the
// side channel.
func (s *Session) stage(ctx context.Context, data []byte) entities.StashID {
	id := s.stash.Put(data)
	s.call(ctx, entities.ExportStashSetInt, entities.SlotStashID, int32(id))
	s.call(ctx, entities.ExportStashSetInt, entities.SlotStashLen, int32(len(data)))
	return id
}

// restage stages data for the import named, first dropping whatever that
// import staged last time if the guest never pulled it.
func (s *Session) restage(ctx context.Context, name string, data []byte) entities.StashID {
	if prev, ok := s.unpulled[name]; ok {
		s.stash.Take(prev)
	}
	id := s.stage(ctx, data)
	s.unpulled[name] = id
	return id
}

// releaseNode frees the side resources of a disposed id.
func (s *Session) releaseNode(id entities.NodeID, _ ports.Node) {
	s.listeners.RemoveNode(id)
	if u, ok := s.imageURLs[id]; ok {
		s.objectURLs.Revoke(u)
		delete(s.imageURLs, id)
	}
}

// Do runs fn on the session loop and waits for it. Host code must use Do to
// touch the document while the session is running.
func (s *Session) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return &wardErrors.StateError{Operation: "do", Want: entities.SessionRunning.String(), Got: s.State().String()}
	}
	return s.loop.Do(ctx, fn)
}

// Lookup resolves a node id.
func (s *Session) Lookup(ctx context.Context, id entities.NodeID) (ports.Node, bool) {
	var (
		node ports.Node
		ok   bool
	)
	err := s.Do(ctx, func(context.Context) error {
		node, ok = s.registry.Resolve(id)
		return nil
	})
	if err != nil {
		return nil, false
	}
	return node, ok
}

// Dispatch delivers ev to the listeners on id's node. It needs a document
// that can dispatch events and reports whether a listener prevented the
// default action.
func (s *Session) Dispatch(ctx context.Context, id entities.NodeID, ev *ports.Event) (bool, error) {
	d, ok := s.doc.(interface {
		Dispatch(node ports.Node, ev *ports.Event) bool
	})
	if !ok {
		return false, &wardErrors.CapabilityError{Capability: "dispatch"}
	}
	var prevented bool
	err := s.Do(ctx, func(context.Context) error {
		node, ok := s.registry.Resolve(id)
		if !ok {
			return nil
		}
		prevented = d.Dispatch(node, ev)
		return nil
	})
	return prevented, err
}

// Close ends the session and releases everything it holds. It is safe to
// call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.end(ctx)

		release := func(context.Context) error {
			s.listeners.Clear()
			s.registry.Clear()
			s.fileHandles.Clear()
			s.blobHandles.Clear()
			s.stash.Reset()
			return nil
		}
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			if err := s.loop.Do(ctx, release); err != nil {
				s.logger.DebugContext(ctx, "release on closed loop", "error", err)
				_ = release(ctx)
			}
		} else {
			_ = release(ctx)
		}

		s.loop.Stop()
		s.cancel()
		if s.runtime != nil {
			s.closeErr = s.runtime.Close(ctx)
		}
	})
	return s.closeErr
}
