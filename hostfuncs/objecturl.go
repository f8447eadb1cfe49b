package hostfuncs

import (
	"sync"

	"github.com/google/uuid"
)

// ObjectURL is a blob registered under a blob: URL.
type ObjectURL struct {
	MIME string
	Data []byte
}

// ObjectURLs is the session's blob URL store.
type ObjectURLs struct {
	entries map[string]ObjectURL
	origin  string
	mu      sync.RWMutex
}

// NewObjectURLs creates a store minting URLs under origin. An empty origin
// is reported as "null", as browsers do for opaque origins.
func NewObjectURLs(origin string) *ObjectURLs {
	if origin == "" {
		origin = "null"
	}
	return &ObjectURLs{entries: make(map[string]ObjectURL), origin: origin}
}

// Create stores data and returns its new URL.
func (o *ObjectURLs) Create(data []byte, mime string) string {
	u := "blob:" + o.origin + "/" + uuid.NewString()
	o.mu.Lock()
	o.entries[u] = ObjectURL{MIME: mime, Data: data}
	o.mu.Unlock()
	return u
}

// Resolve returns the blob behind url.
func (o *ObjectURLs) Resolve(url string) (ObjectURL, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	obj, ok := o.entries[url]
	return obj, ok
}

// Revoke forgets url. Revoking twice is a no-op.
func (o *ObjectURLs) Revoke(url string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.entries[url]
	delete(o.entries, url)
	return ok
}

// Len returns the number of live URLs.
func (o *ObjectURLs) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}
