package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/ports"
)

var (
	_ ports.Clipboard = (*System)(nil)
	_ ports.Clipboard = (*Memory)(nil)
)

func TestMemory_WriteText(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.WriteText(context.Background(), "one"))
	require.NoError(t, m.WriteText(context.Background(), "two"))

	assert.Equal(t, "two", m.Text())
	assert.Equal(t, 2, m.Writes())
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.ErrorIs(t, m.WriteText(ctx, "x"), context.Canceled)
	assert.Zero(t, m.Writes())
}

func TestNewSystem(t *testing.T) {
	s, err := NewSystem()
	if err != nil {
		var capErr *wardErrors.CapabilityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, "clipboard", capErr.Capability)
		assert.ErrorIs(t, err, ErrUnsupported)
		return
	}
	assert.NotNil(t, s)
}
