package hostfuncs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURLs_Lifecycle(t *testing.T) {
	urls := NewObjectURLs("https://app.test")
	u := urls.Create([]byte{0x89, 'P', 'N', 'G'}, "image/png")

	assert.True(t, strings.HasPrefix(u, "blob:https://app.test/"))

	obj, ok := urls.Resolve(u)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.MIME)

	assert.True(t, urls.Revoke(u))
	assert.False(t, urls.Revoke(u))
	_, ok = urls.Resolve(u)
	assert.False(t, ok)
}

func TestObjectURLs_OpaqueOrigin(t *testing.T) {
	u := NewObjectURLs("").Create(nil, "")
	assert.True(t, strings.HasPrefix(u, "blob:null/"))
}

func TestObjectURLs_Unique(t *testing.T) {
	urls := NewObjectURLs("")
	assert.NotEqual(t, urls.Create(nil, ""), urls.Create(nil, ""))
	assert.Equal(t, 2, urls.Len())
}
