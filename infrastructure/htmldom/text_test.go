package htmldom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/moshez/ward/domain/entities"
)

func TestDocument_TextContent(t *testing.T) {
	d, root := newDoc(t, "")
	p := d.CreateElement("p")
	d.AppendChild(root, p)
	d.SetText(p, "hello-")
	b := d.CreateElement("b")
	d.AppendChild(p, b)
	d.SetText(b, "ward")

	assert.Equal(t, "hello-ward", d.TextContent(p))
	assert.Equal(t, "", d.TextContent("not a node"))
}

func TestDocument_CaretWithoutLayout(t *testing.T) {
	d, root := newDoc(t, "")
	p := d.CreateElement("p")
	d.AppendChild(root, p)
	d.SetText(p, "abc")

	_, ok := d.CaretOffset(p, 1, 1)
	assert.False(t, ok)
	_, ok = d.CaretRect(p, 1)
	assert.False(t, ok)
}

func TestDocument_Caret(t *testing.T) {
	d, root := newDoc(t, "", WithLayout(func(*html.Node) (entities.Measurement, bool) {
		return entities.Measurement{X: 10, Y: 20, Width: 40, Height: 16}, true
	}))
	p := d.CreateElement("p")
	d.AppendChild(root, p)
	d.SetText(p, "añbc")

	tests := []struct {
		name   string
		x, y   float64
		offset int
		ok     bool
	}{
		{"left edge", 10, 25, 0, true},
		{"second cell", 21, 25, 1, true},
		{"after multi-byte rune", 30, 25, 3, true},
		{"right edge", 50, 25, 5, true},
		{"left of box", 9, 25, 0, false},
		{"below box", 20, 37, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, ok := d.CaretOffset(p, tt.x, tt.y)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.offset, off)
		})
	}

	m, ok := d.CaretRect(p, 3)
	require.True(t, ok)
	assert.Equal(t, entities.Measurement{X: 30, Y: 20, Height: 16}, m)

	_, ok = d.CaretRect(p, 2)
	assert.False(t, ok, "inside ñ")
	_, ok = d.CaretRect(p, 6)
	assert.False(t, ok)
	m, ok = d.CaretRect(p, 5)
	require.True(t, ok)
	assert.Equal(t, 50.0, m.X)
}
