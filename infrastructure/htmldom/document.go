// Package htmldom is a headless host UI tree built on golang.org/x/net/html.
//
// It implements ports.Document over *html.Node handles, resolves selectors
// with cascadia, and dispatches synthetic events with bubbling. Layout is
// optional: without a LayoutFunc every node reports itself unmeasurable.
package htmldom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// DefaultMarkup is the page used when none is supplied.
const DefaultMarkup = `<!DOCTYPE html><html><head></head><body><div id="ward-root"></div></body></html>`

// LayoutFunc reports geometry for a node.
type LayoutFunc func(n *html.Node) (entities.Measurement, bool)

// Option configures a Document.
type Option func(*Document)

// WithLayout installs a layout provider used by Measure.
func WithLayout(fn LayoutFunc) Option {
	return func(d *Document) {
		d.layout = fn
	}
}

type subscription struct {
	handler ports.EventHandler
	kind    string
	removed bool
}

// Document is a mutable HTML tree. Its methods may be called from any
// goroutine; event handlers run without the document lock held.
type Document struct {
	doc       *html.Node
	layout    LayoutFunc
	listeners map[*html.Node][]*subscription
	mu        sync.RWMutex
}

// Parse builds a document from markup.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	d := &Document{doc: doc, listeners: make(map[*html.Node][]*subscription)}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseString builds a document from a markup string. An empty string uses
// DefaultMarkup.
func ParseString(markup string, opts ...Option) (*Document, error) {
	if markup == "" {
		markup = DefaultMarkup
	}
	return Parse(strings.NewReader(markup), opts...)
}

func element(n ports.Node) (*html.Node, bool) {
	h, ok := n.(*html.Node)
	return h, ok && h != nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc
}

// CreateElement implements ports.Document.
func (d *Document) CreateElement(tag string) ports.Node {
	tag = strings.ToLower(tag)
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

// AppendChild implements ports.Document.
func (d *Document) AppendChild(parent, child ports.Node) {
	p, ok := element(parent)
	c, ok2 := element(child)
	if !ok || !ok2 || p == c {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if isAncestor(c, p) {
		return
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	p.AppendChild(c)
}

// Remove implements ports.Document.
func (d *Document) Remove(node ports.Node) {
	n, ok := element(node)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// RemoveChildren implements ports.Document.
func (d *Document) RemoveChildren(node ports.Node) {
	n, ok := element(node)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(n)
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SetText implements ports.Document.
func (d *Document) SetText(node ports.Node, text string) {
	n, ok := element(node)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// SetAttribute implements ports.Document.
func (d *Document) SetAttribute(node ports.Node, name, value string) {
	n, ok := element(node)
	if !ok || name == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// Attribute returns the value of an attribute.
func (d *Document) Attribute(node ports.Node, name string) (string, bool) {
	n, ok := element(node)
	if !ok {
		return "", false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Walk implements ports.Document.
func (d *Document) Walk(node ports.Node, fn func(ports.Node) bool) {
	n, ok := element(node)
	if !ok {
		return
	}
	d.mu.RLock()
	var all []*html.Node
	var collect func(*html.Node)
	collect = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			all = append(all, c)
			collect(c)
		}
	}
	collect(n)
	d.mu.RUnlock()

	for _, c := range all {
		if !fn(c) {
			return
		}
	}
}

// Measure implements ports.Document.
func (d *Document) Measure(node ports.Node) (entities.Measurement, bool) {
	n, ok := element(node)
	if !ok || d.layout == nil {
		return entities.Measurement{}, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.layout(n)
}

// QuerySelector implements ports.Document.
func (d *Document) QuerySelector(selector string) (ports.Node, bool) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n := cascadia.Query(d.doc, sel); n != nil {
		return n, true
	}
	return nil, false
}

// Listen implements ports.Document.
func (d *Document) Listen(node ports.Node, kind string, handler ports.EventHandler) func() {
	n, ok := element(node)
	if !ok || handler == nil {
		return func() {}
	}
	sub := &subscription{kind: kind, handler: handler}
	d.mu.Lock()
	d.listeners[n] = append(d.listeners[n], sub)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			sub.removed = true
			subs := d.listeners[n]
			for i, s := range subs {
				if s == sub {
					d.listeners[n] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(d.listeners[n]) == 0 {
				delete(d.listeners, n)
			}
		})
	}
}

// ListenerCount returns the number of subscriptions on node.
func (d *Document) ListenerCount(node ports.Node) int {
	n, ok := element(node)
	if !ok {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[n])
}

// InnerHTML renders the children of node.
func (d *Document) InnerHTML(node ports.Node) string {
	n, ok := element(node)
	if !ok {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.doc)
}

func isAncestor(a, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}
