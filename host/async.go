package host

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/host/completion"
	"github.com/moshez/ward/hostfuncs"
)

// start runs work off the loop for token, or fails it right away when the
// capability is missing or the arguments could not be read.
func (s *Session) start(op completion.Op, token entities.Token, available bool, work completion.Work) {
	if !available || work == nil {
		s.router.Fail(op, token)
		return
	}
	s.router.Go(s.runCtx, op, token, func(ctx context.Context) completion.Result {
		res := work(ctx)
		if res.Args == nil {
			return completion.Failure(op)
		}
		return res
	})
}

// allowStorage reports whether the policy, if any, admits op on key.
func (s *Session) allowStorage(ctx context.Context, key, op string) bool {
	return s.policy == nil || s.policy.CheckStorage(ctx, entities.StorageRequest{Key: key, Operation: op})
}

// allowFetch reports whether the policy, if any, admits a request to target.
// Only http and https URLs are ever admitted.
func (s *Session) allowFetch(ctx context.Context, target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return false
	}
	var port int
	switch u.Scheme {
	case "http":
		port = 80
	case "https":
		port = 443
	default:
		return false
	}
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return false
		}
	}
	return s.policy == nil || s.policy.CheckNetwork(ctx, entities.NetworkRequest{Host: u.Hostname(), Port: port})
}

func (s *Session) failed(ctx context.Context, op completion.Op, err error) completion.Result {
	s.logger.DebugContext(ctx, "operation failed", "op", op.Name, "error", err)
	return completion.Failure(op)
}

func (s *Session) kvPut(ctx context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpKVPut, entities.Token(argI32(stack, 4))
	key, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	val, ok2 := readBytes(mem, argU32(stack, 2), argU32(stack, 3))
	ok = ok && ok2 && s.allowStorage(ctx, key, "write")
	s.start(op, token, s.kv != nil && ok, func(ctx context.Context) completion.Result {
		if err := s.kv.Put(ctx, key, val); err != nil {
			return s.failed(ctx, op, err)
		}
		return completion.Success(0)
	})
}

// kvGet reports the value length, 0 when the key is absent. The value
// itself is staged in the stash.
func (s *Session) kvGet(ctx context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpKVGet, entities.Token(argI32(stack, 2))
	key, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	ok = ok && s.allowStorage(ctx, key, "read")
	s.start(op, token, s.kv != nil && ok, func(ctx context.Context) completion.Result {
		v, found, err := s.kv.Get(ctx, key)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		if !found || len(v) == 0 {
			return completion.Success(0)
		}
		return completion.Result{Args: []int32{int32(len(v))}, Payload: v}
	})
}

func (s *Session) kvDelete(ctx context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpKVDelete, entities.Token(argI32(stack, 2))
	key, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	ok = ok && s.allowStorage(ctx, key, "write")
	s.start(op, token, s.kv != nil && ok, func(ctx context.Context) completion.Result {
		if err := s.kv.Delete(ctx, key); err != nil {
			return s.failed(ctx, op, err)
		}
		return completion.Success(0)
	})
}

// fetch reports (status, body length) for 2xx responses and (0, 0) for
// anything else.
func (s *Session) fetch(ctx context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpFetch, entities.Token(argI32(stack, 2))
	raw, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	var base string
	if s.window != nil {
		base = s.window.URL()
	}
	target := hostfuncs.ResolveURL(base, raw)

	ok = ok && raw != "" && s.allowFetch(ctx, target)
	s.start(op, token, s.http != nil && ok, func(ctx context.Context) completion.Result {
		status, body, err := s.http.Fetch(ctx, target)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		if status < 200 || status > 299 {
			s.logger.DebugContext(ctx, "fetch not ok", "url", target, "status", status)
			return completion.Failure(op)
		}
		res := completion.Result{Args: []int32{int32(status), int32(len(body))}}
		if len(body) > 0 {
			res.Payload = body
		}
		return res
	})
}

func (s *Session) clipboardWriteText(_ context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpClipboard, entities.Token(argI32(stack, 2))
	text, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	s.start(op, token, s.clipboard != nil && ok, func(ctx context.Context) completion.Result {
		if err := s.clipboard.WriteText(ctx, text); err != nil {
			return s.failed(ctx, op, err)
		}
		return completion.Success(1)
	})
}

// fileOpen reports (handle, size) with the file name staged in the stash.
// Handle 0 means no file, or one too large for i32 offsets.
func (s *Session) fileOpen(_ context.Context, _ ports.Memory, stack []uint64) {
	op, token := completion.OpFileOpen, entities.Token(argI32(stack, 1))
	input, ok := s.registry.Resolve(argNode(stack, 0))
	s.start(op, token, s.files != nil && ok, func(ctx context.Context) completion.Result {
		f, err := s.files.Pick(ctx, input)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		if f == nil {
			return completion.Failure(op)
		}
		if f.Size() > math.MaxInt32 {
			_ = f.Close()
			return s.failed(ctx, op, fmt.Errorf("%s: %d bytes is too large to address", f.Name(), f.Size()))
		}
		h := s.fileHandles.Insert(f)
		if s.State() == entities.SessionEnded {
			s.fileHandles.Release(h)
			return completion.Failure(op)
		}
		return completion.Result{
			Args:    []int32{int32(h), int32(f.Size())},
			Payload: []byte(f.Name()),
		}
	})
}

func (s *Session) fileRead(_ context.Context, mem ports.Memory, stack []uint64) {
	s.readHandle(s.fileHandles, mem, stack)
}

func (s *Session) fileClose(_ context.Context, _ ports.Memory, stack []uint64) {
	s.fileHandles.Release(entities.Handle(argU32(stack, 0)))
}

// decompress reports (handle, length) of the output blob. Handle 0 means
// the method is unsupported or the input is invalid.
func (s *Session) decompress(_ context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpDecompress, entities.Token(argI32(stack, 3))
	data, ok := readBytes(mem, argU32(stack, 0), argU32(stack, 1))
	method := hostfuncs.Method(argI32(stack, 2))
	s.start(op, token, ok, func(ctx context.Context) completion.Result {
		out, err := hostfuncs.Decompress(ctx, data, method, s.decompressLimit)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		h := s.blobHandles.Insert(bytes.NewReader(out))
		return completion.Success(int32(h), int32(len(out)))
	})
}

func (s *Session) blobRead(_ context.Context, mem ports.Memory, stack []uint64) {
	s.readHandle(s.blobHandles, mem, stack)
}

func (s *Session) blobFree(_ context.Context, _ ports.Memory, stack []uint64) {
	s.blobHandles.Release(entities.Handle(argU32(stack, 0)))
}

// readHandle serves (handle, offset, len, out) reads. It returns the number
// of bytes copied, 0 past the end or for unknown handles.
func (s *Session) readHandle(t *hostfuncs.HandleTable, mem ports.Memory, stack []uint64) {
	h := entities.Handle(argU32(stack, 0))
	off, n := int64(argU32(stack, 1)), argI32(stack, 2)
	out := argU32(stack, 3)
	if n <= 0 {
		setI32(stack, 0)
		return
	}
	setI32(stack, writeBytes(mem, out, n, t.Read(h, off, int(n))))
}

func (s *Session) notificationRequestPermission(_ context.Context, _ ports.Memory, stack []uint64) {
	op, token := completion.OpPermission, entities.Token(argI32(stack, 0))
	s.start(op, token, s.notifier != nil, func(ctx context.Context) completion.Result {
		granted, err := s.notifier.RequestPermission(ctx)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		if granted {
			return completion.Success(1)
		}
		return completion.Success(0)
	})
}

func (s *Session) notificationShow(ctx context.Context, mem ports.Memory, stack []uint64) {
	title, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	if !ok || s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.Show(s.runCtx, title); err != nil {
			s.logger.DebugContext(ctx, "notification failed", "error", err)
		}
	}()
}

// pushSubscribe needs notification permission first, as browsers do.
func (s *Session) pushSubscribe(_ context.Context, mem ports.Memory, stack []uint64) {
	op, token := completion.OpPushSubscribe, entities.Token(argI32(stack, 2))
	key, ok := readBytes(mem, argU32(stack, 0), argU32(stack, 1))
	s.start(op, token, s.push != nil && s.notifier != nil && ok, func(ctx context.Context) completion.Result {
		granted, err := s.notifier.RequestPermission(ctx)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		if !granted {
			return completion.Failure(op)
		}
		sub, err := s.push.Subscribe(ctx, key)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		return subscriptionResult(sub)
	})
}

func (s *Session) pushGetSubscription(_ context.Context, _ ports.Memory, stack []uint64) {
	op, token := completion.OpPushGet, entities.Token(argI32(stack, 0))
	s.start(op, token, s.push != nil, func(ctx context.Context) completion.Result {
		sub, err := s.push.Subscription(ctx)
		if err != nil {
			return s.failed(ctx, op, err)
		}
		return subscriptionResult(sub)
	})
}

func subscriptionResult(sub []byte) completion.Result {
	if len(sub) == 0 {
		return completion.Success(0)
	}
	return completion.Result{Args: []int32{int32(len(sub))}, Payload: sub}
}
