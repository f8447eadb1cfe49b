package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moshez/ward/domain/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) IsInteractive() bool {
	return m.Called().Bool(0)
}

func (m *mockPrompter) PromptForPermission(origin string) (bool, bool, error) {
	args := m.Called(origin)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func TestParsePermission(t *testing.T) {
	for _, s := range []string{"granted", "denied", "default", "prompt"} {
		p, err := ParsePermission(s)
		require.NoError(t, err)
		assert.Equal(t, Permission(s), p)
	}

	p, err := ParsePermission("")
	require.NoError(t, err)
	assert.Equal(t, PermissionDefault, p)

	_, err = ParsePermission("maybe")
	assert.Error(t, err)
}

func TestNotifier_Policy(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		permission Permission
		want       bool
	}{
		{PermissionGranted, true},
		{PermissionDenied, false},
		{PermissionDefault, false},
		{PermissionPrompt, false}, // no prompter configured
	}
	for _, tt := range tests {
		t.Run(string(tt.permission), func(t *testing.T) {
			n := New(tt.permission)
			got, err := n.RequestPermission(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotifier_Show(t *testing.T) {
	ctx := context.Background()

	denied := New(PermissionDenied)
	require.NoError(t, denied.Show(ctx, "hidden"))
	assert.Empty(t, denied.Shown())

	granted := New(PermissionGranted)
	require.NoError(t, granted.Show(ctx, "first"))
	require.NoError(t, granted.Show(ctx, "second"))
	assert.Equal(t, []string{"first", "second"}, granted.Shown())
}

func TestNotifier_PromptRemembers(t *testing.T) {
	ctx := context.Background()
	p := &mockPrompter{}
	p.On("IsInteractive").Return(true)
	p.On("PromptForPermission", "https://app.test").Return(true, true, nil).Once()

	n := New(PermissionPrompt, WithPrompter(p), WithOrigin("https://app.test"))

	got, err := n.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, PermissionGranted, n.Permission())

	// Remembered: no second prompt.
	got, err = n.RequestPermission(ctx)
	require.NoError(t, err)
	assert.True(t, got)
	p.AssertExpectations(t)
}

func TestNotifier_PromptOnce(t *testing.T) {
	ctx := context.Background()
	p := &mockPrompter{}
	p.On("IsInteractive").Return(true)
	p.On("PromptForPermission", "guest").Return(true, false, nil).Twice()

	n := New(PermissionPrompt, WithPrompter(p))
	for i := 0; i < 2; i++ {
		got, err := n.RequestPermission(ctx)
		require.NoError(t, err)
		assert.True(t, got)
	}
	assert.Equal(t, PermissionPrompt, n.Permission())
	p.AssertExpectations(t)
}

func TestCliPrompter_PromptForPermission(t *testing.T) {
	tests := []struct {
		input    string
		granted  bool
		remember bool
	}{
		{"y\n", true, false},
		{"always\n", true, true},
		{"n\n", false, false},
		{"never\n", false, true},
		{"what\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewCliPrompter(bytes.NewBufferString(tt.input), out)

			granted, remember, err := p.PromptForPermission("https://app.test")
			require.NoError(t, err)
			assert.Equal(t, tt.granted, granted)
			assert.Equal(t, tt.remember, remember)
			assert.Contains(t, out.String(), "https://app.test wants to show notifications")
		})
	}
}

func TestCliPrompter_NonInteractive(t *testing.T) {
	p := NewCliPrompter(&bytes.Buffer{}, &bytes.Buffer{})
	assert.False(t, p.IsInteractive())

	_, _, err := p.PromptForPermission("x")
	assert.Error(t, err)
}

type memoryStore struct {
	saved map[string]string
}

func (m *memoryStore) LoadPermission(origin string) (string, bool, error) {
	p, ok := m.saved[origin]
	return p, ok, nil
}

func (m *memoryStore) SavePermission(origin, permission string) error {
	m.saved[origin] = permission
	return nil
}

func TestNotifier_PermissionStore(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{saved: map[string]string{}}

	p := &mockPrompter{}
	p.On("IsInteractive").Return(true)
	p.On("PromptForPermission", "https://app.test").Return(false, true, nil).Once()

	first := New(PermissionPrompt, WithPrompter(p), WithOrigin("https://app.test"), WithPermissionStore(store))
	got, err := first.RequestPermission(ctx)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, "denied", store.saved["https://app.test"])

	// A later run starts from the remembered decision.
	second := New(PermissionPrompt, WithPrompter(p), WithOrigin("https://app.test"), WithPermissionStore(store))
	assert.Equal(t, PermissionDenied, second.Permission())
	p.AssertExpectations(t)

	// Explicit configuration wins over the store.
	store.saved["https://app.test"] = "granted"
	assert.Equal(t, PermissionDefault, New(PermissionDefault, WithOrigin("https://app.test"), WithPermissionStore(store)).Permission())

	store.saved["https://app.test"] = "bogus"
	assert.Equal(t, PermissionPrompt, New(PermissionPrompt, WithOrigin("https://app.test"), WithPermissionStore(store)).Permission())
}
