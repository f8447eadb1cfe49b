package hostfuncs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_RecoversPanic(t *testing.T) {
	err := Guard("document.append", func() { panic("node already has a parent") })

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "document.append", pe.Op)
	assert.Contains(t, err.Error(), "node already has a parent")
}

func TestGuard_NoPanic(t *testing.T) {
	ran := false
	assert.NoError(t, Guard("noop", func() { ran = true }))
	assert.True(t, ran)
}
