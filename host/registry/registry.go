// Package registry maps guest-minted node ids to host node handles.
//
// The registry is the only owner of host UI references held on behalf of the
// guest. It keeps a forward map (id to handle) and a reverse index (handle to
// id) so that host-originated lookups, such as event targets and selector
// matches, never scan the table. It is owned by the host loop and is not safe
// for concurrent use.
package registry

import (
	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
)

// Walker enumerates the host descendants of a node.
type Walker interface {
	Walk(node ports.Node, fn func(ports.Node) bool)
}

// ReleaseFunc is called once for every id leaving the registry, after the
// entry has been removed.
type ReleaseFunc func(id entities.NodeID, node ports.Node)

type registryConfig struct {
	onRelease []ReleaseFunc
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithReleaseHook adds a function run for every disposed id. Hooks release
// side resources tied to an id, such as object URLs or listeners.
func WithReleaseHook(fn ReleaseFunc) RegistryOption {
	return func(c *registryConfig) {
		c.onRelease = append(c.onRelease, fn)
	}
}

// Registry is the identity table for one session.
type Registry struct {
	tree      Walker
	nodes     map[entities.NodeID]ports.Node
	ids       map[ports.Node]entities.NodeID
	onRelease []ReleaseFunc
}

// New creates a registry whose root id resolves to root.
func New(tree Walker, root ports.Node, opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Registry{
		tree:      tree,
		nodes:     make(map[entities.NodeID]ports.Node),
		ids:       make(map[ports.Node]entities.NodeID),
		onRelease: cfg.onRelease,
	}
	if root != nil {
		r.nodes[entities.RootID] = root
		r.ids[root] = entities.RootID
	}
	return r
}

// OnRelease adds a release hook after construction.
func (r *Registry) OnRelease(fn ReleaseFunc) {
	r.onRelease = append(r.onRelease, fn)
}

// Register binds id to node. Registering the root id is ignored. A live id
// is rebound: its previous handle loses its reverse entry and release hooks
// run for it first.
func (r *Registry) Register(id entities.NodeID, node ports.Node) {
	if id == entities.RootID || node == nil {
		return
	}
	if old, ok := r.nodes[id]; ok {
		r.release(id, old)
	}
	if prev, ok := r.ids[node]; ok && prev != id {
		r.release(prev, node)
	}
	r.nodes[id] = node
	r.ids[node] = id
}

// Resolve returns the handle bound to id.
func (r *Registry) Resolve(id entities.NodeID) (ports.Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Lookup returns the id bound to node.
func (r *Registry) Lookup(node ports.Node) (entities.NodeID, bool) {
	if node == nil {
		return 0, false
	}
	id, ok := r.ids[node]
	return id, ok
}

// Len returns the number of registered ids, including the root.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Dispose unregisters id and every registered host descendant of its node,
// releasing their side resources. The root is never disposed; use
// DisposeDescendants to clear under it. Returns the number of ids removed.
func (r *Registry) Dispose(id entities.NodeID) int {
	if id == entities.RootID {
		return 0
	}
	node, ok := r.nodes[id]
	if !ok {
		return 0
	}
	n := r.DisposeDescendants(id)
	r.release(id, node)
	return n + 1
}

// DisposeDescendants unregisters every registered host descendant of id's
// node while keeping id itself.
func (r *Registry) DisposeDescendants(id entities.NodeID) int {
	node, ok := r.nodes[id]
	if !ok || r.tree == nil {
		return 0
	}

	var doomed []entities.NodeID
	r.tree.Walk(node, func(child ports.Node) bool {
		if cid, ok := r.ids[child]; ok && cid != entities.RootID {
			doomed = append(doomed, cid)
		}
		return true
	})

	for _, cid := range doomed {
		if h, ok := r.nodes[cid]; ok {
			r.release(cid, h)
		}
	}
	return len(doomed)
}

// Clear releases every entry except the root.
func (r *Registry) Clear() {
	for id, node := range r.nodes {
		if id != entities.RootID {
			r.release(id, node)
		}
	}
}

func (r *Registry) release(id entities.NodeID, node ports.Node) {
	delete(r.nodes, id)
	if cur, ok := r.ids[node]; ok && cur == id {
		delete(r.ids, node)
	}
	for _, fn := range r.onRelease {
		fn(id, node)
	}
}
