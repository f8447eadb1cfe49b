package hostfuncs

import (
	"bytes"
	"errors"
)

// DefaultMaxBodySize is the default limit for fetched response bodies (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// DefaultMaxDecompressedSize is the default limit for decompressed output (64MB).
const DefaultMaxDecompressedSize = 64 * 1024 * 1024

// ErrLimitExceeded is returned by a write that would cross a BoundedBuffer's
// limit.
var ErrLimitExceeded = errors.New("size limit exceeded")

// BoundedBuffer collects output up to a fixed limit. The first write that
// would cross it fails whole, which stops io.Copy before it drains the rest
// of the source.
type BoundedBuffer struct {
	buffer   bytes.Buffer
	limit    int
	exceeded bool
}

// NewBoundedBuffer creates a new BoundedBuffer with the specified limit.
func NewBoundedBuffer(limit int) *BoundedBuffer {
	return &BoundedBuffer{
		limit: limit,
	}
}

// Write implements io.Writer.
func (b *BoundedBuffer) Write(p []byte) (n int, err error) {
	if b.exceeded {
		return 0, ErrLimitExceeded
	}
	if len(p) > b.limit-b.buffer.Len() {
		b.exceeded = true
		return 0, ErrLimitExceeded
	}
	return b.buffer.Write(p)
}

// Exceeded reports whether a write was refused.
func (b *BoundedBuffer) Exceeded() bool {
	return b.exceeded
}

// Bytes returns the buffer contents as a byte slice.
func (b *BoundedBuffer) Bytes() []byte {
	return b.buffer.Bytes()
}

// Len returns the current length of the buffer.
func (b *BoundedBuffer) Len() int {
	return b.buffer.Len()
}

// Reset empties the buffer and makes it writable again.
func (b *BoundedBuffer) Reset() {
	b.buffer.Reset()
	b.exceeded = false
}
