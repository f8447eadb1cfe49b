package htmldom

import (
	"github.com/moshez/ward/domain/ports"
	"golang.org/x/net/html"
)

// nonBubbling lists event kinds delivered only to their target.
var nonBubbling = map[string]bool{
	"focus":            true,
	"blur":             true,
	"mouseenter":       true,
	"mouseleave":       true,
	"load":             true,
	"error":            true,
	"scroll":           true,
	"resize":           true,
	"visibilitychange": true,
}

// Dispatch delivers ev to listeners on node and, for bubbling kinds, on its
// ancestors. ev.Target is set to node when empty. It reports whether a
// listener prevented the default action.
//
// Listeners are snapshotted before delivery. Subscriptions added by a
// handler take effect from the next dispatch; subscriptions removed by a
// handler are skipped for the rest of this one.
func (d *Document) Dispatch(node ports.Node, ev *ports.Event) bool {
	n, ok := element(node)
	if !ok || ev == nil {
		return false
	}
	if ev.Target == nil {
		ev.Target = n
	}

	d.mu.RLock()
	var subs []*subscription
	for cur := n; cur != nil; cur = cur.Parent {
		for _, s := range d.listeners[cur] {
			if s.kind == ev.Type {
				subs = append(subs, s)
			}
		}
		if nonBubbling[ev.Type] {
			break
		}
	}
	d.mu.RUnlock()

	for _, s := range subs {
		d.mu.RLock()
		removed := s.removed
		d.mu.RUnlock()
		if !removed {
			s.handler(ev)
		}
	}
	return ev.DefaultPrevented
}

// Find returns the first node matching selector, for host code driving the
// document directly.
func (d *Document) Find(selector string) *html.Node {
	n, ok := d.QuerySelector(selector)
	if !ok {
		return nil
	}
	return n.(*html.Node)
}
