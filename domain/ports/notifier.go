package ports

import "context"

// Notifier shows user notifications.
type Notifier interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
	Show(ctx context.Context, title string) error
}

// PushService manages the session's push subscription.
type PushService interface {
	// Subscribe creates or returns the subscription for the application
	// server key and returns it as PushSubscription JSON.
	Subscribe(ctx context.Context, applicationServerKey []byte) ([]byte, error)
	// Subscription returns the current subscription JSON, or nil when there
	// is none.
	Subscription(ctx context.Context) ([]byte, error)
}
