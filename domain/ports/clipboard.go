package ports

import "context"

// Clipboard writes text to the host clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
