package host

import (
	"context"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/wireformat"
)

func (s *Session) addEventListener(ctx context.Context, mem ports.Memory, stack []uint64) {
	nodeID := argNode(stack, 0)
	kind, ok := readString(mem, argU32(stack, 1), argU32(stack, 2))
	if !ok || kind == "" {
		return
	}
	id := entities.ListenerID(argU32(stack, 3))

	node, ok := s.registry.Resolve(nodeID)
	if !ok {
		return
	}
	unlisten := s.doc.Listen(node, kind, s.eventHandler(id))
	if err := s.listeners.Add(id, nodeID, kind, unlisten); err != nil {
		s.logger.ErrorContext(ctx, "listener not recorded", "listener", id, "error", err)
		unlisten()
	}
}

func (s *Session) removeEventListener(_ context.Context, _ ports.Memory, stack []uint64) {
	s.listeners.Remove(entities.ListenerID(argU32(stack, 0)))
}

// preventDefault marks the event being delivered. Outside a delivery it
// does nothing.
func (s *Session) preventDefault(context.Context, ports.Memory, []uint64) {
	if s.event != nil {
		s.event.DefaultPrevented = true
	}
}

// eventHandler is the single dispatch callback registered with the document
// for listener id. It stages the event payload and calls ward_on_event
// synchronously so the guest can prevent the default action. The payload can
// only be pulled during that call. Nothing is delivered once id has been
// removed, even mid-dispatch.
func (s *Session) eventHandler(id entities.ListenerID) ports.EventHandler {
	return func(ev *ports.Event) {
		if !s.running() {
			return
		}
		if _, ok := s.listeners.Get(id); !ok {
			return
		}
		ctx := s.runCtx

		target := entities.NoTarget
		if tid, ok := s.registry.Lookup(ev.Target); ok {
			target = int32(tid)
		}
		payload := wireformat.EncodeEvent(ev, target)
		var staged entities.StashID
		if len(payload) > 0 {
			staged = s.stage(ctx, payload)
		}

		prev := s.event
		s.event = ev
		s.call(ctx, entities.ExportEventFire, int32(id), int32(len(payload)))
		s.event = prev
		if staged != 0 {
			s.stash.Take(staged)
		}
	}
}
