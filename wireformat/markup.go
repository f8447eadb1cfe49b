package wireformat

import (
	"encoding/binary"
	"math"

	wardErrors "github.com/moshez/ward/domain/errors"
)

// MarkupKind identifies a record in the sanitized markup stream.
type MarkupKind uint8

// Markup stream records.
const (
	MarkupOpen  MarkupKind = 1
	MarkupText  MarkupKind = 2
	MarkupClose MarkupKind = 3
)

// Attr is a name/value pair on an opened element.
type Attr struct {
	Name  string
	Value string
}

// MarkupToken is one decoded record.
type MarkupToken struct {
	Kind  MarkupKind
	Tag   string
	Attrs []Attr
	Text  string
}

// MarkupWriter encodes the markup stream. Callers are responsible for only
// passing names that fit a u8 length; longer names are dropped by Open and
// text longer than a u16 length is split into several records.
type MarkupWriter struct {
	buf []byte
}

// Open writes an element start. Attributes whose name or value does not fit
// the encoding are skipped, as are attributes beyond the 255th.
func (w *MarkupWriter) Open(tag string, attrs []Attr) bool {
	if tag == "" || len(tag) > math.MaxUint8 {
		return false
	}
	w.buf = append(w.buf, byte(MarkupOpen), byte(len(tag)))
	w.buf = append(w.buf, tag...)

	countAt := len(w.buf)
	w.buf = append(w.buf, 0)
	n := 0
	for _, a := range attrs {
		if n == math.MaxUint8 {
			break
		}
		if a.Name == "" || len(a.Name) > math.MaxUint8 || len(a.Value) > math.MaxUint16 {
			continue
		}
		w.buf = append(w.buf, byte(len(a.Name)))
		w.buf = append(w.buf, a.Name...)
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(a.Value)))
		w.buf = append(w.buf, a.Value...)
		n++
	}
	w.buf[countAt] = byte(n)
	return true
}

// Text writes character data, splitting it as needed.
func (w *MarkupWriter) Text(s string) {
	for len(s) > 0 {
		chunk := s
		if len(chunk) > math.MaxUint16 {
			chunk = chunk[:math.MaxUint16]
		}
		w.buf = append(w.buf, byte(MarkupText))
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(chunk)))
		w.buf = append(w.buf, chunk...)
		s = s[len(chunk):]
	}
}

// Close writes an element end.
func (w *MarkupWriter) Close() {
	w.buf = append(w.buf, byte(MarkupClose))
}

// Bytes returns the encoded stream.
func (w *MarkupWriter) Bytes() []byte {
	return w.buf
}

// MarkupDecoder reads a markup stream.
type MarkupDecoder struct {
	c   cursor
	cur MarkupToken
}

// NewMarkupDecoder returns a decoder over buf.
func NewMarkupDecoder(buf []byte) *MarkupDecoder {
	return &MarkupDecoder{c: cursor{buf: buf}}
}

// Next decodes the next record.
func (d *MarkupDecoder) Next() bool {
	if d.c.err != nil || d.c.remaining() == 0 {
		return false
	}
	start := d.c.off
	kind := MarkupKind(d.c.u8())
	tok := MarkupToken{Kind: kind}

	switch kind {
	case MarkupOpen:
		tok.Tag = d.c.str8()
		n := int(d.c.u8())
		for i := 0; i < n && d.c.err == nil; i++ {
			name := d.c.str8()
			value := d.c.str16()
			tok.Attrs = append(tok.Attrs, Attr{Name: name, Value: value})
		}
	case MarkupText:
		tok.Text = d.c.str16()
	case MarkupClose:
	default:
		d.c.err = &wardErrors.ProtocolError{Offset: start, Opcode: byte(kind), Reason: "unknown markup record"}
		return false
	}

	if d.c.err != nil {
		d.c.err = &wardErrors.ProtocolError{Offset: start, Opcode: byte(kind), Reason: "record crosses end of buffer", Err: d.c.err}
		return false
	}
	d.cur = tok
	return true
}

// Token returns the record decoded by the last successful Next.
func (d *MarkupDecoder) Token() MarkupToken {
	return d.cur
}

// Err returns the violation that stopped decoding, if any.
func (d *MarkupDecoder) Err() error {
	return d.c.err
}
