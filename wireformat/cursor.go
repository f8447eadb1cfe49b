package wireformat

import (
	"encoding/binary"
	"math"

	wardErrors "github.com/moshez/ward/domain/errors"
)

// cursor reads little-endian values from a byte slice. The first failed read
// latches; every later read fails too.
type cursor struct {
	buf []byte
	off int
	err error
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n > c.remaining() {
		c.err = wardErrors.ErrTruncated
		return nil
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) u8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) u16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *cursor) u32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *cursor) f64() float64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// str8 reads a u8 length prefix and that many bytes.
func (c *cursor) str8() string {
	n := int(c.u8())
	return string(c.take(n))
}

// str16 reads a u16 length prefix and that many bytes.
func (c *cursor) str16() string {
	n := int(c.u16())
	return string(c.take(n))
}
