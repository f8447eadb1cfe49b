package ports

import "context"

// Memory is a view of guest linear memory. Out-of-range accesses report
// false rather than panicking.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// Guest is an instantiated guest module.
type Guest interface {
	// Call invokes an exported function with i32 arguments. Calling an
	// export the guest does not provide returns an error wrapping
	// ErrExportNotFound from domain/errors.
	Call(ctx context.Context, export string, args ...int32) error
	// HasExport reports whether the guest provides export.
	HasExport(export string) bool
	Memory() Memory
}
