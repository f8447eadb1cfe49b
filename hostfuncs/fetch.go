package hostfuncs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrBodyTooLarge reports a response body above the configured limit.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

// FetchOption is a functional option for configuring a Fetcher.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	timeout      time.Duration
	maxBodySize  int
	maxRedirects int
	userAgent    string
	policy       AddressPolicy
}

func defaultFetchConfig() fetchConfig {
	return fetchConfig{
		timeout:      30 * time.Second,
		maxBodySize:  DefaultMaxBodySize,
		maxRedirects: 10,
		userAgent:    "ward-host/1",
	}
}

// WithFetchTimeout sets the per-request timeout.
func WithFetchTimeout(d time.Duration) FetchOption {
	return func(c *fetchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithFetchMaxBodySize sets the maximum response body size.
func WithFetchMaxBodySize(size int) FetchOption {
	return func(c *fetchConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithFetchMaxRedirects sets the maximum number of redirects to follow.
func WithFetchMaxRedirects(n int) FetchOption {
	return func(c *fetchConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithFetchAllowPrivate lets requests reach loopback and private networks.
func WithFetchAllowPrivate(allow bool) FetchOption {
	return func(c *fetchConfig) {
		c.policy.AllowPrivate = allow
	}
}

// Fetcher performs guest GET requests. It implements ports.HTTPClient.
type Fetcher struct {
	client *http.Client
	cfg    fetchConfig
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetchOption) *Fetcher {
	cfg := defaultFetchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := &http.Transport{
		DialContext:           cfg.policy.Dialer().DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	client := &http.Client{
		Timeout:   cfg.timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.maxRedirects)
			}
			return checkScheme(req.URL)
		},
	}
	return &Fetcher{client: client, cfg: cfg}
}

func checkScheme(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// Fetch issues a GET for rawURL and returns the status and body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (int, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid url: %w", err)
	}
	if err := checkScheme(u); err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", f.cfg.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body := NewBoundedBuffer(f.cfg.maxBodySize)
	if _, err := io.Copy(body, resp.Body); err != nil {
		if body.Exceeded() {
			return resp.StatusCode, nil, ErrBodyTooLarge
		}
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body.Bytes(), nil
}

// ResolveURL resolves ref against base. An empty or unparseable base leaves
// ref unchanged.
func ResolveURL(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
