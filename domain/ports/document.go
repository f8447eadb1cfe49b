package ports

import "github.com/moshez/ward/domain/entities"

// Node is an opaque host UI object. Adapters choose the concrete type, which
// must be comparable (pointers are typical) because the bridge keeps a
// reverse index keyed by it.
type Node any

// Event is a host UI event as seen by a listener.
type Event struct {
	// Type is the event kind, e.g. "click".
	Type string
	// Target is the node the event was dispatched to.
	Target Node

	ClientX float64
	ClientY float64

	Key       string
	Modifiers uint8

	Value string

	ScrollTop  float64
	ScrollLeft float64

	Width  float64
	Height float64

	TouchX  float64
	TouchY  float64
	TouchID int32

	Hidden bool

	// DefaultPrevented is set when a listener asks the host to skip the
	// event's default action.
	DefaultPrevented bool
}

// EventHandler receives events for a single registration.
type EventHandler func(ev *Event)

// Document is the host UI tree the bridge mutates.
//
// All methods are called from the host loop. Implementations must tolerate
// nodes they did not create by ignoring them.
type Document interface {
	// CreateElement returns a new detached element node.
	CreateElement(tag string) Node

	// AppendChild attaches child as the last child of parent, detaching it
	// from any previous parent first.
	AppendChild(parent, child Node)

	// Remove detaches node from its parent.
	Remove(node Node)

	// RemoveChildren detaches every child of node.
	RemoveChildren(node Node)

	// SetText replaces the children of node with a single text node.
	SetText(node Node, text string)

	// SetAttribute sets or replaces an attribute.
	SetAttribute(node Node, name, value string)

	// Walk calls fn for every descendant of node in document order. Walking
	// stops early when fn returns false.
	Walk(node Node, fn func(Node) bool)

	// Measure reports the node's geometry. ok is false when the host has no
	// layout for it.
	Measure(node Node) (m entities.Measurement, ok bool)

	// TextContent returns the concatenated text of node and its
	// descendants.
	TextContent(node Node) string

	// CaretOffset maps a point to a byte offset into node's text content.
	// ok is false when the host has no layout for node or the point lies
	// outside it.
	CaretOffset(node Node, x, y float64) (offset int, ok bool)

	// CaretRect reports the caret box before the byte offset into node's
	// text content. Width is always 0.
	CaretRect(node Node, offset int) (m entities.Measurement, ok bool)

	// QuerySelector returns the first node matching selector.
	QuerySelector(selector string) (Node, bool)

	// Listen subscribes handler to events of the given kind on node and
	// returns the function that removes the subscription.
	Listen(node Node, kind string, handler EventHandler) (unlisten func())
}
