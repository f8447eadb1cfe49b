// Package testutil provides common test utilities and assertions for bridge
// tests.
package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Timeouts used by Eventually.
const (
	WaitTimeout = 2 * time.Second
	WaitTick    = 5 * time.Millisecond
)

// Eventually waits for cond with the package's default timeout, for results
// that arrive through the host loop.
func Eventually(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.Eventually(t, cond, WaitTimeout, WaitTick, msgAndArgs...)
}

// Never asserts that cond stays false for a short while, for deliveries that
// must not happen.
func Never(t *testing.T, cond func() bool, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Never(t, cond, 50*time.Millisecond, WaitTick, msgAndArgs...)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// Closed reports whether ch is closed without blocking.
func Closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
