package wireformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMarkup(t *testing.T, buf []byte) []MarkupToken {
	t.Helper()
	var out []MarkupToken
	d := NewMarkupDecoder(buf)
	for d.Next() {
		out = append(out, d.Token())
	}
	require.NoError(t, d.Err())
	return out
}

func TestMarkupWriter_OpenTextClose(t *testing.T) {
	var w MarkupWriter
	require.True(t, w.Open("a", []Attr{{Name: "href", Value: "/x"}, {Name: "title", Value: ""}}))
	w.Text("link")
	w.Close()

	assert.Equal(t, []MarkupToken{
		{Kind: MarkupOpen, Tag: "a", Attrs: []Attr{{Name: "href", Value: "/x"}, {Name: "title", Value: ""}}},
		{Kind: MarkupText, Text: "link"},
		{Kind: MarkupClose},
	}, decodeMarkup(t, w.Bytes()))
}

func TestMarkupWriter_SplitsLongText(t *testing.T) {
	var w MarkupWriter
	w.Text(strings.Repeat("z", 70000))

	toks := decodeMarkup(t, w.Bytes())
	require.Len(t, toks, 2)
	assert.Len(t, toks[0].Text, 65535)
	assert.Len(t, toks[1].Text, 70000-65535)
}

func TestMarkupWriter_SkipsOversizedNames(t *testing.T) {
	var w MarkupWriter
	assert.False(t, w.Open(strings.Repeat("t", 256), nil))
	assert.Empty(t, w.Bytes())

	require.True(t, w.Open("p", []Attr{{Name: strings.Repeat("n", 256), Value: "v"}, {Name: "id", Value: "ok"}}))
	toks := decodeMarkup(t, w.Bytes())
	require.Len(t, toks, 1)
	assert.Equal(t, []Attr{{Name: "id", Value: "ok"}}, toks[0].Attrs)
}

func TestMarkupDecoder_UnknownRecord(t *testing.T) {
	d := NewMarkupDecoder([]byte{7})
	assert.False(t, d.Next())
	assert.Error(t, d.Err())
}
