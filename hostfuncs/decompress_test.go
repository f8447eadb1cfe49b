package hostfuncs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, method Method, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w interface {
		Write([]byte) (int, error)
		Close() error
	}
	switch method {
	case MethodGzip:
		w = gzip.NewWriter(&buf)
	case MethodDeflate:
		w = zlib.NewWriter(&buf)
	case MethodDeflateRaw:
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w = fw
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompress_Methods(t *testing.T) {
	plain := []byte(strings.Repeat("ward bridge ", 100))
	for _, m := range []Method{MethodGzip, MethodDeflate, MethodDeflateRaw} {
		t.Run(m.String(), func(t *testing.T) {
			out, err := Decompress(context.Background(), compress(t, m, plain), m, DefaultMaxDecompressedSize)
			require.NoError(t, err)
			assert.Equal(t, plain, out)
		})
	}
}

func TestDecompress_UnsupportedMethod(t *testing.T) {
	_, err := Decompress(context.Background(), []byte{1, 2, 3}, Method(7), 1024)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestDecompress_CorruptInput(t *testing.T) {
	_, err := Decompress(context.Background(), []byte("not gzip"), MethodGzip, 1024)
	assert.Error(t, err)
}

func TestDecompress_OutputLimit(t *testing.T) {
	data := compress(t, MethodGzip, bytes.Repeat([]byte{0}, 4096))
	_, err := Decompress(context.Background(), data, MethodGzip, 1024)
	assert.ErrorContains(t, err, "exceeds")
}
