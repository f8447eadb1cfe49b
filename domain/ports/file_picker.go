package ports

import (
	"context"
	"io"
)

// File is an opened user-selected file.
type File interface {
	io.ReaderAt
	io.Closer
	Name() string
	Size() int64
}

// FilePicker resolves the file selected through a file input node.
type FilePicker interface {
	// Pick opens the selection of input. It returns (nil, nil) when nothing
	// is selected.
	Pick(ctx context.Context, input Node) (File, error)
}
