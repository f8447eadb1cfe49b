package htmldom

import (
	"net/url"
	"sync"
)

// Window is an in-memory navigation state implementing ports.Window.
type Window struct {
	history []string
	mu      sync.RWMutex
	focused int
	hidden  bool
}

// NewWindow creates a window positioned at rawURL.
func NewWindow(rawURL string) *Window {
	return &Window{history: []string{rawURL}}
}

func (w *Window) current() string {
	return w.history[len(w.history)-1]
}

// URL implements ports.Window.
func (w *Window) URL() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current()
}

// Hash implements ports.Window.
func (w *Window) Hash() string {
	u, err := url.Parse(w.URL())
	if err != nil || u.Fragment == "" {
		return ""
	}
	return "#" + u.EscapedFragment()
}

// SetHash implements ports.Window. Setting a new fragment adds a history
// entry, as location.hash assignment does.
func (w *Window) SetHash(hash string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	u, err := url.Parse(w.current())
	if err != nil {
		return
	}
	if len(hash) > 0 && hash[0] == '#' {
		hash = hash[1:]
	}
	u.Fragment = ""
	u.RawFragment = ""
	next := u.String()
	if hash != "" {
		next += "#" + hash
	}
	if next != w.current() {
		w.history = append(w.history, next)
	}
}

// ReplaceState implements ports.Window.
func (w *Window) ReplaceState(rawURL string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history[len(w.history)-1] = w.resolve(rawURL)
}

// PushState implements ports.Window.
func (w *Window) PushState(rawURL string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = append(w.history, w.resolve(rawURL))
}

func (w *Window) resolve(ref string) string {
	base, err := url.Parse(w.current())
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

// Back moves to the previous history entry and reports whether there was one.
func (w *Window) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.history) < 2 {
		return false
	}
	w.history = w.history[:len(w.history)-1]
	return true
}

// HistoryLen returns the number of history entries.
func (w *Window) HistoryLen() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.history)
}

// Visible implements ports.Window.
func (w *Window) Visible() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return !w.hidden
}

// SetHidden changes the reported visibility.
func (w *Window) SetHidden(hidden bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hidden = hidden
}

// Focus implements ports.Window.
func (w *Window) Focus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focused++
}

// FocusCount returns how often Focus was called.
func (w *Window) FocusCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.focused
}

// Origin returns scheme://host of the current URL, or "" when it has none.
func (w *Window) Origin() string {
	u, err := url.Parse(w.URL())
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
