package hostfuncs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedBuffer_Write(t *testing.T) {
	t.Run("writes within limit", func(t *testing.T) {
		buf := NewBoundedBuffer(100)
		n, err := buf.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", string(buf.Bytes()))
		assert.False(t, buf.Exceeded())
	})

	t.Run("refuses a write crossing the limit", func(t *testing.T) {
		buf := NewBoundedBuffer(10)
		_, err := buf.Write([]byte("hello"))
		require.NoError(t, err)

		n, err := buf.Write([]byte(" world"))
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.Zero(t, n)
		assert.Equal(t, "hello", string(buf.Bytes()))
		assert.True(t, buf.Exceeded())

		// Refusal is sticky.
		_, err = buf.Write([]byte("!"))
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})

	t.Run("exactly full is accepted", func(t *testing.T) {
		buf := NewBoundedBuffer(5)
		_, err := buf.Write([]byte("12345"))
		require.NoError(t, err)
		_, err = buf.Write(nil)
		require.NoError(t, err)
		assert.False(t, buf.Exceeded())
	})

	t.Run("io.Copy stops at the limit", func(t *testing.T) {
		buf := NewBoundedBuffer(4)
		_, err := io.Copy(buf, bytes.NewReader([]byte("0123456789")))
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.True(t, buf.Exceeded())
	})
}

func TestBoundedBuffer_Reset(t *testing.T) {
	buf := NewBoundedBuffer(2)
	_, _ = buf.Write([]byte("abc"))
	buf.Reset()
	assert.Zero(t, buf.Len())
	assert.False(t, buf.Exceeded())

	_, err := buf.Write([]byte("ab"))
	assert.NoError(t, err)
}
