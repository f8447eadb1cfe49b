package push

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/internal/testutil"
)

var _ ports.PushService = (*MemoryService)(nil)

func TestMemoryService_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryService("https://push.example/v1/")

	none, err := s.Subscription(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	raw, err := s.Subscribe(ctx, []byte("server-key"))
	require.NoError(t, err)

	var sub Subscription
	require.NoError(t, json.Unmarshal(raw, &sub))
	assert.True(t, strings.HasPrefix(sub.Endpoint, "https://push.example/v1/"))
	assert.Nil(t, sub.ExpirationTime)

	p256dh, err := base64.RawURLEncoding.DecodeString(sub.Keys.P256DH)
	require.NoError(t, err)
	assert.Len(t, p256dh, 65)
	assert.Equal(t, byte(0x04), p256dh[0])

	auth, err := base64.RawURLEncoding.DecodeString(sub.Keys.Auth)
	require.NoError(t, err)
	assert.Len(t, auth, 16)

	assert.Contains(t, string(raw), `"expirationTime":null`)

	again, err := s.Subscribe(ctx, []byte("server-key"))
	require.NoError(t, err)
	testutil.AssertJSONEqual(t, string(raw), string(again))

	current, err := s.Subscription(ctx)
	require.NoError(t, err)
	testutil.AssertJSONEqual(t, string(raw), string(current))
}

func TestMemoryService_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryService("")

	_, err := s.Subscribe(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = s.Subscribe(ctx, []byte("a"))
	require.NoError(t, err)

	_, err = s.Subscribe(ctx, []byte("b"))
	assert.ErrorIs(t, err, ErrKeyMismatch)

	assert.True(t, s.Unsubscribe())
	assert.False(t, s.Unsubscribe())

	_, err = s.Subscribe(ctx, []byte("b"))
	assert.NoError(t, err)
}
