package host

import (
	"io"
	"log/slog"

	"github.com/moshez/ward/domain/ports"
)

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithName sets the session name used in logs.
func WithName(name string) Option {
	return func(s *Session) {
		s.name = name
	}
}

// WithDocument sets the UI tree and the node bound to id 0.
func WithDocument(doc ports.Document, root ports.Node) Option {
	return func(s *Session) {
		s.doc = doc
		s.root = root
	}
}

// WithWindow sets the navigation and window adapter.
func WithWindow(w ports.Window) Option {
	return func(s *Session) {
		s.window = w
	}
}

// WithOrigin sets the origin object URLs are minted under.
func WithOrigin(origin string) Option {
	return func(s *Session) {
		s.origin = origin
	}
}

// WithKVStore enables the key-value capability.
func WithKVStore(kv ports.KVStore) Option {
	return func(s *Session) {
		s.kv = kv
	}
}

// WithHTTPClient enables fetch.
func WithHTTPClient(c ports.HTTPClient) Option {
	return func(s *Session) {
		s.http = c
	}
}

// WithClipboard enables clipboard writes.
func WithClipboard(c ports.Clipboard) Option {
	return func(s *Session) {
		s.clipboard = c
	}
}

// WithFilePicker enables file open.
func WithFilePicker(p ports.FilePicker) Option {
	return func(s *Session) {
		s.files = p
	}
}

// WithPolicy limits the hosts fetch may reach and the keys the key-value
// store accepts. Denied requests complete with their failure shape.
func WithPolicy(p ports.Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithNotifier enables notifications.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithPushService enables push subscriptions. Subscribing also needs a
// notifier that grants permission.
func WithPushService(p ports.PushService) Option {
	return func(s *Session) {
		s.push = p
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWASI instantiates wasi_snapshot_preview1 for the guest.
func WithWASI(enabled bool) Option {
	return func(s *Session) {
		s.wasi = enabled
	}
}

// WithStdio sets the guest's WASI stdout and stderr.
func WithStdio(stdout, stderr io.Writer) Option {
	return func(s *Session) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithMaxFlushBytes caps a single mutation flush. Larger flushes are
// rejected whole.
func WithMaxFlushBytes(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxFlush = n
		}
	}
}

// WithDecompressLimit caps decompressed output.
func WithDecompressLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.decompressLimit = n
		}
	}
}
