package htmldom

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// TextContent implements ports.Document.
func (d *Document) TextContent(node ports.Node) string {
	n, ok := element(node)
	if !ok {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return textContent(n)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// textBox returns the layout box of n with its text, and the advance of one
// character. Text is laid out on one line in equal-width cells across the
// box.
func (d *Document) textBox(node ports.Node) (entities.Measurement, string, float64, bool) {
	n, ok := element(node)
	if !ok || d.layout == nil {
		return entities.Measurement{}, "", 0, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.layout(n)
	if !ok {
		return entities.Measurement{}, "", 0, false
	}
	text := textContent(n)
	var advance float64
	if runes := utf8.RuneCountInString(text); runes > 0 {
		advance = m.Width / float64(runes)
	}
	return m, text, advance, true
}

// CaretOffset implements ports.Document. Offsets fall on rune boundaries.
func (d *Document) CaretOffset(node ports.Node, x, y float64) (int, bool) {
	m, text, advance, ok := d.textBox(node)
	if !ok || x < m.X || x > m.X+m.Width || y < m.Y || y > m.Y+m.Height {
		return 0, false
	}
	if advance == 0 {
		return 0, true
	}
	cell := int(math.Round((x - m.X) / advance))
	offset := 0
	for i := 0; i < cell && offset < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return offset, true
}

// CaretRect implements ports.Document. An offset inside a multi-byte rune or
// past the end of the text has no caret.
func (d *Document) CaretRect(node ports.Node, offset int) (entities.Measurement, bool) {
	m, text, advance, ok := d.textBox(node)
	if !ok || offset < 0 || offset > len(text) {
		return entities.Measurement{}, false
	}
	if offset < len(text) && !utf8.RuneStart(text[offset]) {
		return entities.Measurement{}, false
	}
	cells := utf8.RuneCountInString(text[:offset])
	return entities.Measurement{
		X:      m.X + float64(cells)*advance,
		Y:      m.Y,
		Height: m.Height,
	}, true
}
