package listeners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() (func(), *int) {
	n := 0
	return func() { n++ }, &n
}

func TestTable_AddGetRemove(t *testing.T) {
	tbl, err := New()
	require.NoError(t, err)

	unlisten, calls := counter()
	require.NoError(t, tbl.Add(1, 10, "click", unlisten))

	l, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, "click", l.Kind)
	assert.Equal(t, uint32(10), l.Node)

	assert.True(t, tbl.Remove(1))
	assert.Equal(t, 1, *calls)

	assert.False(t, tbl.Remove(1), "second removal is a no-op")
	assert.Equal(t, 1, *calls)
	_, ok = tbl.Get(1)
	assert.False(t, ok)
}

func TestTable_AddReplacesSameID(t *testing.T) {
	tbl, err := New()
	require.NoError(t, err)

	first, firstCalls := counter()
	second, secondCalls := counter()
	require.NoError(t, tbl.Add(3, 1, "click", first))
	require.NoError(t, tbl.Add(3, 2, "input", second))

	assert.Equal(t, 1, *firstCalls)
	assert.Zero(t, *secondCalls)
	assert.Equal(t, 1, tbl.Len())

	l, ok := tbl.Get(3)
	require.True(t, ok)
	assert.Equal(t, "input", l.Kind)
}

func TestTable_RemoveNode(t *testing.T) {
	tbl, err := New()
	require.NoError(t, err)

	a, aCalls := counter()
	b, bCalls := counter()
	c, cCalls := counter()
	require.NoError(t, tbl.Add(1, 7, "click", a))
	require.NoError(t, tbl.Add(2, 7, "keydown", b))
	require.NoError(t, tbl.Add(3, 8, "click", c))

	assert.Equal(t, 2, tbl.RemoveNode(7))
	assert.Equal(t, 1, *aCalls)
	assert.Equal(t, 1, *bCalls)
	assert.Zero(t, *cCalls)
	assert.Equal(t, 1, tbl.Len())

	assert.Zero(t, tbl.RemoveNode(7))
}

func TestTable_Clear(t *testing.T) {
	tbl, err := New()
	require.NoError(t, err)

	a, aCalls := counter()
	require.NoError(t, tbl.Add(1, 1, "click", a))
	require.NoError(t, tbl.Add(2, 1, "click", nil))

	tbl.Clear()
	assert.Zero(t, tbl.Len())
	assert.Equal(t, 1, *aCalls)
}
