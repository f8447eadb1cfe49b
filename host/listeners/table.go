// Package listeners tracks guest event listener registrations, indexed both
// by listener id and by the node they are attached to.
package listeners

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/moshez/ward/domain/entities"
)

const tableName = "listener"

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableName: {
			Name: tableName,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "ID"},
				},
				"node": {
					Name:    "node",
					Indexer: &memdb.UintFieldIndex{Field: "Node"},
				},
			},
		},
	},
}

// Listener is one registration. Unlisten detaches it from the host.
type Listener struct {
	Unlisten func()
	Kind     string
	ID       uint32
	Node     uint32
}

// Table holds the listeners of one session.
type Table struct {
	db *memdb.MemDB
}

// New creates an empty table.
func New() (*Table, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("listener table: %w", err)
	}
	return &Table{db: db}, nil
}

// Add records a registration, replacing and detaching any previous
// registration with the same id.
func (t *Table) Add(id entities.ListenerID, node entities.NodeID, kind string, unlisten func()) error {
	txn := t.db.Txn(true)
	defer txn.Abort()

	prev, err := txn.First(tableName, "id", uint32(id))
	if err != nil {
		return err
	}
	if prev != nil {
		if err := txn.Delete(tableName, prev); err != nil {
			return err
		}
	}
	l := &Listener{ID: uint32(id), Node: uint32(node), Kind: kind, Unlisten: unlisten}
	if err := txn.Insert(tableName, l); err != nil {
		return err
	}
	txn.Commit()

	if prev != nil {
		detach(prev.(*Listener))
	}
	return nil
}

// Get returns the registration for id.
func (t *Table) Get(id entities.ListenerID) (*Listener, bool) {
	raw, err := t.db.Txn(false).First(tableName, "id", uint32(id))
	if err != nil || raw == nil {
		return nil, false
	}
	return raw.(*Listener), true
}

// Remove detaches and forgets the registration for id. It reports whether a
// registration existed; removing twice is a no-op.
func (t *Table) Remove(id entities.ListenerID) bool {
	txn := t.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableName, "id", uint32(id))
	if err != nil || raw == nil {
		return false
	}
	if err := txn.Delete(tableName, raw); err != nil {
		return false
	}
	txn.Commit()
	detach(raw.(*Listener))
	return true
}

// RemoveNode detaches every registration on node and returns how many there
// were.
func (t *Table) RemoveNode(node entities.NodeID) int {
	txn := t.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tableName, "node", uint32(node))
	if err != nil {
		return 0
	}
	var gone []*Listener
	for raw := it.Next(); raw != nil; raw = it.Next() {
		gone = append(gone, raw.(*Listener))
	}
	for _, l := range gone {
		if err := txn.Delete(tableName, l); err != nil {
			return 0
		}
	}
	txn.Commit()

	for _, l := range gone {
		detach(l)
	}
	return len(gone)
}

// Len returns the number of registrations.
func (t *Table) Len() int {
	it, err := t.db.Txn(false).Get(tableName, "id")
	if err != nil {
		return 0
	}
	n := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		n++
	}
	return n
}

// Clear detaches every registration.
func (t *Table) Clear() {
	txn := t.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tableName, "id")
	if err != nil {
		return
	}
	var all []*Listener
	for raw := it.Next(); raw != nil; raw = it.Next() {
		all = append(all, raw.(*Listener))
	}
	if _, err := txn.DeleteAll(tableName, "id"); err != nil {
		return
	}
	txn.Commit()

	for _, l := range all {
		detach(l)
	}
}

func detach(l *Listener) {
	if l.Unlisten != nil {
		l.Unlisten()
	}
}
