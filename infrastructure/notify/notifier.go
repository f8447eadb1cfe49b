// Package notify implements ports.Notifier driven by a configured
// permission policy.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Permission is the notification permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
	// PermissionPrompt asks the operator through a Prompter.
	PermissionPrompt Permission = "prompt"
)

// ParsePermission validates a configured permission string.
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(s); p {
	case PermissionGranted, PermissionDenied, PermissionDefault, PermissionPrompt:
		return p, nil
	case "":
		return PermissionDefault, nil
	default:
		return "", fmt.Errorf("unknown notification permission %q", s)
	}
}

// Prompter asks the operator for a decision.
type Prompter interface {
	IsInteractive() bool
	PromptForPermission(origin string) (granted bool, remember bool, err error)
}

// PermissionStore remembers decisions across runs, keyed by origin.
type PermissionStore interface {
	LoadPermission(origin string) (string, bool, error)
	SavePermission(origin, permission string) error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger notifications are shown on.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithPrompter sets the prompter used under PermissionPrompt.
func WithPrompter(p Prompter) Option {
	return func(n *Notifier) {
		n.prompter = p
	}
}

// WithOrigin sets the origin named in prompts.
func WithOrigin(origin string) Option {
	return func(n *Notifier) {
		n.origin = origin
	}
}

// WithPermissionStore loads a remembered decision for the origin when the
// configured permission is "prompt", and saves answers the operator asks to
// have remembered.
func WithPermissionStore(store PermissionStore) Option {
	return func(n *Notifier) {
		n.store = store
	}
}

// Notifier decides permission from policy and "shows" notifications by
// logging them.
type Notifier struct {
	prompter   Prompter
	store      PermissionStore
	logger     *slog.Logger
	permission Permission
	origin     string
	shown      []string
	mu         sync.Mutex
}

// New creates a notifier starting in the given permission state.
func New(permission Permission, opts ...Option) *Notifier {
	n := &Notifier{
		permission: permission,
		logger:     slog.Default(),
		origin:     "guest",
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.permission == PermissionPrompt && n.store != nil {
		n.loadRemembered()
	}
	return n
}

func (n *Notifier) loadRemembered() {
	saved, ok, err := n.store.LoadPermission(n.origin)
	if err != nil {
		n.logger.Warn("remembered permission unavailable", "origin", n.origin, "error", err)
		return
	}
	if !ok {
		return
	}
	switch p := Permission(saved); p {
	case PermissionGranted, PermissionDenied:
		n.permission = p
	default:
		n.logger.Warn("ignoring remembered permission", "origin", n.origin, "permission", saved)
	}
}

// Permission returns the current state.
func (n *Notifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

// RequestPermission implements ports.Notifier. Under "default" there is no
// one to ask and the request is refused without changing state.
func (n *Notifier) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.permission {
	case PermissionGranted:
		return true, nil
	case PermissionPrompt:
		if n.prompter == nil || !n.prompter.IsInteractive() {
			return false, nil
		}
		granted, remember, err := n.prompter.PromptForPermission(n.origin)
		if err != nil {
			return false, fmt.Errorf("prompt: %w", err)
		}
		if remember {
			if granted {
				n.permission = PermissionGranted
			} else {
				n.permission = PermissionDenied
			}
			if n.store != nil {
				if err := n.store.SavePermission(n.origin, string(n.permission)); err != nil {
					n.logger.Warn("permission not remembered", "origin", n.origin, "error", err)
				}
			}
		}
		return granted, nil
	default:
		return false, nil
	}
}

// Granted reports whether notifications may be shown without asking.
func (n *Notifier) Granted() bool {
	return n.Permission() == PermissionGranted
}

// Show implements ports.Notifier. Titles are dropped unless permission was
// granted.
func (n *Notifier) Show(ctx context.Context, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	granted := n.permission == PermissionGranted
	if granted {
		n.shown = append(n.shown, title)
	}
	n.mu.Unlock()

	if !granted {
		n.logger.Debug("notification dropped", "title", title)
		return nil
	}
	n.logger.Info("notification", "title", title)
	return nil
}

// Shown returns the titles shown so far.
func (n *Notifier) Shown() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.shown...)
}
