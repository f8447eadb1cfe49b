package ports

import "context"

// HTTPClient performs guest-initiated GET requests.
type HTTPClient interface {
	// Fetch returns the status code and body for rawURL. Transport failures
	// are returned as errors; non-2xx statuses are not errors.
	Fetch(ctx context.Context, rawURL string) (status int, body []byte, err error)
}
