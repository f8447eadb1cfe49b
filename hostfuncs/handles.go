package hostfuncs

import (
	"errors"
	"io"
	"sync"

	"github.com/moshez/ward/domain/entities"
)

// Resource is readable host data exposed to the guest by handle.
type Resource interface {
	io.ReaderAt
	Size() int64
}

// HandleTable maps guest handles to open resources. Handles start at 1 and
// are never reused within a table.
type HandleTable struct {
	entries map[entities.Handle]Resource
	mu      sync.Mutex
	next    entities.Handle
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{entries: make(map[entities.Handle]Resource)}
}

// Insert stores r and returns its handle.
func (t *HandleTable) Insert(r Resource) entities.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.entries[t.next] = r
	return t.next
}

// Size returns the size of the resource behind h.
func (t *HandleTable) Size(h entities.Handle) (int64, bool) {
	t.mu.Lock()
	r, ok := t.entries[h]
	t.mu.Unlock()
	if !ok {
		return 0, false
	}
	return r.Size(), true
}

// Read returns up to n bytes of h starting at offset. Unknown handles,
// offsets at or past the end, and read errors yield nil.
func (t *HandleTable) Read(h entities.Handle, offset int64, n int) []byte {
	t.mu.Lock()
	r, ok := t.entries[h]
	t.mu.Unlock()
	if !ok || offset < 0 || n <= 0 || offset >= r.Size() {
		return nil
	}
	if rest := r.Size() - offset; int64(n) > rest {
		n = int(rest)
	}
	buf := make([]byte, n)
	got, err := r.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil
	}
	return buf[:got]
}

// Release closes and forgets h. Releasing an unknown handle is a no-op.
func (t *HandleTable) Release(h entities.Handle) bool {
	t.mu.Lock()
	r, ok := t.entries[h]
	delete(t.entries, h)
	t.mu.Unlock()
	if ok {
		if c, isCloser := r.(io.Closer); isCloser {
			_ = c.Close()
		}
	}
	return ok
}

// Len returns the number of open handles.
func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Clear releases every handle.
func (t *HandleTable) Clear() {
	t.mu.Lock()
	handles := make([]entities.Handle, 0, len(t.entries))
	for h := range t.entries {
		handles = append(handles, h)
	}
	t.mu.Unlock()
	for _, h := range handles {
		t.Release(h)
	}
}
