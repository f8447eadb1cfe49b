package host

import (
	"context"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/wireformat"
)

func (s *Session) domFlush(ctx context.Context, mem ports.Memory, stack []uint64) {
	ptr, n := argU32(stack, 0), argU32(stack, 1)
	if int64(n) > int64(s.maxFlush) {
		s.logger.ErrorContext(ctx, "flush rejected", "bytes", n, "limit", s.maxFlush)
		return
	}
	buf, ok := readBytes(mem, ptr, n)
	if !ok {
		s.logger.ErrorContext(ctx, "flush out of bounds", "ptr", ptr, "len", n)
		return
	}
	if err := s.Apply(buf); err != nil {
		s.logger.ErrorContext(ctx, "flush aborted", "error", err)
	}
}

// Apply decodes buf and applies each mutation in order. Mutations before a
// protocol violation stay applied; the rest of the buffer is dropped. It must
// run on the session loop.
func (s *Session) Apply(buf []byte) error {
	d := wireformat.NewMutationDecoder(buf)
	for d.Next() {
		s.applyMutation(d.Mutation())
	}
	return d.Err()
}

func (s *Session) applyMutation(m wireformat.Mutation) {
	switch m.Code {
	case wireformat.OpCreateElement:
		if m.Node == entities.RootID {
			return
		}
		el := s.doc.CreateElement(m.Tag)
		s.registry.Register(m.Node, el)
		if parent, ok := s.registry.Resolve(m.Parent); ok {
			s.doc.AppendChild(parent, el)
		}

	case wireformat.OpSetText:
		node, ok := s.registry.Resolve(m.Node)
		if !ok {
			return
		}
		s.registry.DisposeDescendants(m.Node)
		s.doc.SetText(node, m.Text)

	case wireformat.OpSetAttr:
		if node, ok := s.registry.Resolve(m.Node); ok {
			s.doc.SetAttribute(node, m.Name, m.Value)
		}

	case wireformat.OpRemoveChildren:
		node, ok := s.registry.Resolve(m.Node)
		if !ok {
			return
		}
		s.registry.DisposeDescendants(m.Node)
		s.doc.RemoveChildren(node)

	case wireformat.OpRemoveChild:
		if m.Node == entities.RootID {
			return
		}
		node, ok := s.registry.Resolve(m.Node)
		if !ok {
			return
		}
		s.registry.Dispose(m.Node)
		s.doc.Remove(node)
	}
}

func (s *Session) setImageSrc(ctx context.Context, mem ports.Memory, stack []uint64) {
	id := argNode(stack, 0)
	data, ok := readBytes(mem, argU32(stack, 1), argU32(stack, 2))
	if !ok {
		return
	}
	mime, ok := readString(mem, argU32(stack, 3), argU32(stack, 4))
	if !ok {
		return
	}
	node, ok := s.registry.Resolve(id)
	if !ok {
		return
	}

	u := s.objectURLs.Create(data, mime)
	if old, ok := s.imageURLs[id]; ok {
		s.objectURLs.Revoke(old)
	}
	s.imageURLs[id] = u
	s.doc.SetAttribute(node, "src", u)
	s.logger.DebugContext(ctx, "image source set", "node", id, "bytes", len(data), "mime", mime)
}

// measureNode reports the node's geometry through ward_measure_set before
// returning. All six slots are written even when the node has no layout.
func (s *Session) measureNode(ctx context.Context, _ ports.Memory, stack []uint64) {
	var (
		m  entities.Measurement
		ok bool
	)
	if node, found := s.registry.Resolve(argNode(stack, 0)); found {
		m, ok = s.doc.Measure(node)
		if !ok {
			m = entities.Measurement{}
		}
	}
	for i, v := range m.Slots() {
		s.call(ctx, entities.ExportMeasureSet, int32(i), v)
	}
	if ok {
		setI32(stack, 1)
	} else {
		setI32(stack, 0)
	}
}

// querySelector returns the id of the first match, or -1 when nothing
// matches or the match is not registered.
func (s *Session) querySelector(_ context.Context, mem ports.Memory, stack []uint64) {
	setI32(stack, -1)
	sel, ok := readString(mem, argU32(stack, 0), argU32(stack, 1))
	if !ok || sel == "" {
		return
	}
	node, ok := s.doc.QuerySelector(sel)
	if !ok {
		return
	}
	if id, ok := s.registry.Lookup(node); ok {
		setI32(stack, int32(id))
	}
}

// readTextContent stages the node's text and returns its length, 0 for an
// unknown or empty node.
func (s *Session) readTextContent(ctx context.Context, _ ports.Memory, stack []uint64) {
	setI32(stack, 0)
	node, ok := s.registry.Resolve(argNode(stack, 0))
	if !ok {
		return
	}
	text := s.doc.TextContent(node)
	if text == "" {
		return
	}
	s.restage(ctx, ImportReadTextContent, []byte(text))
	setI32(stack, int32(len(text)))
}

// caretPositionFromPoint maps the point (x, y) to a byte offset into the
// node's text, or -1 when the host cannot place it.
func (s *Session) caretPositionFromPoint(_ context.Context, _ ports.Memory, stack []uint64) {
	setI32(stack, -1)
	node, ok := s.registry.Resolve(argNode(stack, 0))
	if !ok {
		return
	}
	if off, ok := s.doc.CaretOffset(node, float64(argI32(stack, 1)), float64(argI32(stack, 2))); ok {
		setI32(stack, int32(off))
	}
}

// measureTextOffset reports the caret box before a byte offset through
// ward_measure_set, like measureNode, and returns 1 when it was placed.
func (s *Session) measureTextOffset(ctx context.Context, _ ports.Memory, stack []uint64) {
	var (
		m  entities.Measurement
		ok bool
	)
	if node, found := s.registry.Resolve(argNode(stack, 0)); found {
		if m, ok = s.doc.CaretRect(node, int(argI32(stack, 1))); !ok {
			m = entities.Measurement{}
		}
	}
	for i, v := range m.Slots() {
		s.call(ctx, entities.ExportMeasureSet, int32(i), v)
	}
	if ok {
		setI32(stack, 1)
	} else {
		setI32(stack, 0)
	}
}
