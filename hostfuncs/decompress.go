package hostfuncs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Method is a guest decompression method code.
type Method int32

// Decompression methods.
const (
	MethodGzip       Method = 0
	MethodDeflate    Method = 1
	MethodDeflateRaw Method = 2
)

func (m Method) String() string {
	switch m {
	case MethodGzip:
		return "gzip"
	case MethodDeflate:
		return "deflate"
	case MethodDeflateRaw:
		return "deflate-raw"
	default:
		return fmt.Sprintf("Method(%d)", int32(m))
	}
}

// ErrUnsupportedMethod reports an unknown decompression method.
var ErrUnsupportedMethod = errors.New("unsupported decompression method")

// Decompress inflates data with method, refusing output above limit bytes.
func Decompress(ctx context.Context, data []byte, method Method, limit int) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch method {
	case MethodGzip:
		r, err = gzip.NewReader(bytes.NewReader(data))
	case MethodDeflate:
		r, err = zlib.NewReader(bytes.NewReader(data))
	case MethodDeflateRaw:
		r = flate.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer func() { _ = r.Close() }()

	out := NewBoundedBuffer(limit)
	if _, err := io.Copy(out, ctxReader{ctx: ctx, r: r}); err != nil {
		if out.Exceeded() {
			return nil, fmt.Errorf("%s: output exceeds %d bytes: %w", method, limit, err)
		}
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out.Bytes(), nil
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
