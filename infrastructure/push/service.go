// Package push provides an in-process ports.PushService. Subscriptions get a
// fresh endpoint and client keys but nothing is ever delivered to them.
package push

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultEndpoint is the base URL subscription endpoints are minted under.
const DefaultEndpoint = "https://push.invalid/ward"

var (
	// ErrEmptyKey reports a subscribe call without an application server key.
	ErrEmptyKey = errors.New("application server key is empty")
	// ErrKeyMismatch reports a subscribe call with a key that differs from
	// the live subscription's.
	ErrKeyMismatch = errors.New("subscription exists with a different application server key")
)

// Subscription is the PushSubscription JSON shape.
type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime"`
	Keys           SubscriptionKeys `json:"keys"`
}

// SubscriptionKeys carries the client's public key and auth secret,
// base64url without padding.
type SubscriptionKeys struct {
	P256DH string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// MemoryService holds at most one subscription.
type MemoryService struct {
	current   *Subscription
	serverKey []byte
	endpoint  string
	mu        sync.Mutex
}

// NewMemoryService mints endpoints under base.
func NewMemoryService(base string) *MemoryService {
	if base == "" {
		base = DefaultEndpoint
	}
	return &MemoryService{endpoint: strings.TrimRight(base, "/")}
}

// Subscribe implements ports.PushService.
func (s *MemoryService) Subscribe(ctx context.Context, applicationServerKey []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(applicationServerKey) == 0 {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		if !bytes.Equal(s.serverKey, applicationServerKey) {
			return nil, ErrKeyMismatch
		}
		return json.Marshal(s.current)
	}

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate client key: %w", err)
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("generate auth secret: %w", err)
	}

	sub := &Subscription{
		Endpoint: s.endpoint + "/" + uuid.NewString(),
		Keys: SubscriptionKeys{
			P256DH: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
	out, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}
	s.current = sub
	s.serverKey = bytes.Clone(applicationServerKey)
	return out, nil
}

// Subscription implements ports.PushService.
func (s *MemoryService) Subscription(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, nil
	}
	return json.Marshal(s.current)
}

// Unsubscribe drops the current subscription.
func (s *MemoryService) Unsubscribe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.current != nil
	s.current, s.serverKey = nil, nil
	return had
}
