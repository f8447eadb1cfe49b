package host

import (
	"context"
	"time"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/host/completion"
	"github.com/moshez/ward/hostfuncs"
	wardlog "github.com/moshez/ward/log"
)

func (s *Session) setTimer(_ context.Context, _ ports.Memory, stack []uint64) {
	delay := max(argI32(stack, 0), 0)
	token := entities.Token(argI32(stack, 1))
	s.router.After(time.Duration(delay)*time.Millisecond, completion.OpTimer, token)
}

func (s *Session) exit(ctx context.Context, _ ports.Memory, _ []uint64) {
	s.end(ctx)
}

func (s *Session) focusWindow(context.Context, ports.Memory, []uint64) {
	if s.window != nil {
		s.window.Focus()
	}
}

// visibility returns 1 when visible. Without a window the page counts as
// visible.
func (s *Session) visibility(_ context.Context, _ ports.Memory, stack []uint64) {
	if s.window == nil || s.window.Visible() {
		setI32(stack, 1)
		return
	}
	setI32(stack, 0)
}

func (s *Session) log(ctx context.Context, mem ports.Memory, stack []uint64) {
	msg, ok := readString(mem, argU32(stack, 1), argU32(stack, 2))
	if !ok {
		return
	}
	wardlog.LogGuest(ctx, s.guestLogger, argI32(stack, 0), msg)
}

func (s *Session) getURL(_ context.Context, mem ports.Memory, stack []uint64) {
	var u string
	if s.window != nil {
		u = s.window.URL()
	}
	setI32(stack, writeBytes(mem, argU32(stack, 0), argI32(stack, 1), []byte(u)))
}

func (s *Session) getURLHash(_ context.Context, mem ports.Memory, stack []uint64) {
	var h string
	if s.window != nil {
		h = s.window.Hash()
	}
	setI32(stack, writeBytes(mem, argU32(stack, 0), argI32(stack, 1), []byte(h)))
}

func (s *Session) setURLHash(_ context.Context, mem ports.Memory, stack []uint64) {
	if h, ok := readString(mem, argU32(stack, 0), argU32(stack, 1)); ok && s.window != nil {
		s.window.SetHash(h)
	}
}

func (s *Session) replaceState(_ context.Context, mem ports.Memory, stack []uint64) {
	if u, ok := readString(mem, argU32(stack, 0), argU32(stack, 1)); ok && s.window != nil {
		s.window.ReplaceState(u)
	}
}

func (s *Session) pushState(_ context.Context, mem ports.Memory, stack []uint64) {
	if u, ok := readString(mem, argU32(stack, 0), argU32(stack, 1)); ok && s.window != nil {
		s.window.PushState(u)
	}
}

// parseHTML sanitizes markup into the stash and returns the stream length.
// The stash id goes out through the side channel.
func (s *Session) parseHTML(ctx context.Context, mem ports.Memory, stack []uint64) {
	setI32(stack, 0)
	markup, ok := readBytes(mem, argU32(stack, 0), argU32(stack, 1))
	if !ok {
		return
	}
	out := hostfuncs.SanitizeHTML(markup)
	if len(out) == 0 {
		return
	}
	s.restage(ctx, ImportParseHTML, out)
	setI32(stack, int32(len(out)))
}

// stashRead copies min(len, available) bytes of a stash entry into guest
// memory and evicts it.
func (s *Session) stashRead(_ context.Context, mem ports.Memory, stack []uint64) {
	id := entities.StashID(argU32(stack, 0))
	dest, n := argU32(stack, 1), argI32(stack, 2)
	if n < 0 {
		n = 0
	}
	data := s.stash.Pull(id, int(n))
	setI32(stack, writeBytes(mem, dest, n, data))
}
