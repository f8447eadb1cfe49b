package wireformat

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/moshez/ward/domain/entities"
	wardErrors "github.com/moshez/ward/domain/errors"
)

// Opcode identifies a tree mutation.
type Opcode uint8

// Mutation opcodes.
const (
	OpSetText        Opcode = 1
	OpSetAttr        Opcode = 2
	OpRemoveChildren Opcode = 3
	OpCreateElement  Opcode = 4
	OpRemoveChild    Opcode = 5
)

func (o Opcode) String() string {
	switch o {
	case OpSetText:
		return "SET_TEXT"
	case OpSetAttr:
		return "SET_ATTR"
	case OpRemoveChildren:
		return "REMOVE_CHILDREN"
	case OpCreateElement:
		return "CREATE_ELEMENT"
	case OpRemoveChild:
		return "REMOVE_CHILD"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(o))
	}
}

// Mutation is one decoded tree operation. Only the fields used by Code are
// set.
type Mutation struct {
	Code   Opcode
	Node   entities.NodeID
	Parent entities.NodeID
	Tag    string
	Text   string
	Name   string
	Value  string
}

// MutationDecoder walks a flushed mutation buffer one operation at a time.
//
//	d := wireformat.NewMutationDecoder(buf)
//	for d.Next() {
//	    apply(d.Mutation())
//	}
//	if err := d.Err(); err != nil { ... }
type MutationDecoder struct {
	c   cursor
	cur Mutation
}

// NewMutationDecoder returns a decoder over buf. buf is not copied.
func NewMutationDecoder(buf []byte) *MutationDecoder {
	return &MutationDecoder{c: cursor{buf: buf}}
}

// Next decodes the next operation. It returns false at the end of the buffer
// or on the first protocol violation; Err distinguishes the two.
func (d *MutationDecoder) Next() bool {
	if d.c.err != nil || d.c.remaining() == 0 {
		return false
	}

	start := d.c.off
	code := Opcode(d.c.u8())
	m := Mutation{Code: code, Node: entities.NodeID(d.c.u32())}

	switch code {
	case OpSetText:
		m.Text = d.c.str16()
	case OpSetAttr:
		m.Name = d.c.str8()
		m.Value = d.c.str16()
	case OpRemoveChildren, OpRemoveChild:
	case OpCreateElement:
		m.Parent = entities.NodeID(d.c.u32())
		m.Tag = d.c.str8()
	default:
		d.c.err = &wardErrors.ProtocolError{Offset: start, Opcode: byte(code), Reason: "unknown opcode"}
		return false
	}

	if d.c.err != nil {
		d.c.err = &wardErrors.ProtocolError{
			Offset: start,
			Opcode: byte(code),
			Reason: code.String() + " crosses end of buffer",
			Err:    d.c.err,
		}
		return false
	}
	d.cur = m
	return true
}

// Mutation returns the operation decoded by the last successful Next.
func (d *MutationDecoder) Mutation() Mutation {
	return d.cur
}

// Offset is the number of bytes consumed so far.
func (d *MutationDecoder) Offset() int {
	return d.c.off
}

// Err returns the protocol violation that stopped decoding, if any.
func (d *MutationDecoder) Err() error {
	return d.c.err
}

// MutationBuilder encodes mutations the way a guest flushes them. Strings
// longer than their length prefix allows are truncated.
type MutationBuilder struct {
	buf []byte
}

func (b *MutationBuilder) header(code Opcode, node entities.NodeID) {
	b.buf = append(b.buf, byte(code))
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(node))
}

func (b *MutationBuilder) str8(s string) {
	if len(s) > math.MaxUint8 {
		s = s[:math.MaxUint8]
	}
	b.buf = append(b.buf, byte(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *MutationBuilder) str16(s string) {
	if len(s) > math.MaxUint16 {
		s = s[:math.MaxUint16]
	}
	b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(len(s)))
	b.buf = append(b.buf, s...)
}

// SetText appends a SET_TEXT operation.
func (b *MutationBuilder) SetText(node entities.NodeID, text string) *MutationBuilder {
	b.header(OpSetText, node)
	b.str16(text)
	return b
}

// SetAttr appends a SET_ATTR operation.
func (b *MutationBuilder) SetAttr(node entities.NodeID, name, value string) *MutationBuilder {
	b.header(OpSetAttr, node)
	b.str8(name)
	b.str16(value)
	return b
}

// RemoveChildren appends a REMOVE_CHILDREN operation.
func (b *MutationBuilder) RemoveChildren(node entities.NodeID) *MutationBuilder {
	b.header(OpRemoveChildren, node)
	return b
}

// CreateElement appends a CREATE_ELEMENT operation.
func (b *MutationBuilder) CreateElement(node, parent entities.NodeID, tag string) *MutationBuilder {
	b.header(OpCreateElement, node)
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(parent))
	b.str8(tag)
	return b
}

// RemoveChild appends a REMOVE_CHILD operation.
func (b *MutationBuilder) RemoveChild(node entities.NodeID) *MutationBuilder {
	b.header(OpRemoveChild, node)
	return b
}

// Raw appends bytes verbatim.
func (b *MutationBuilder) Raw(p ...byte) *MutationBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// Bytes returns the encoded buffer.
func (b *MutationBuilder) Bytes() []byte {
	return b.buf
}

// Len returns the encoded length.
func (b *MutationBuilder) Len() int {
	return len(b.buf)
}
