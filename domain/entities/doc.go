// Package entities provides the core value types shared by the bridge:
// guest-minted identifiers, session states, measurements and the names of
// the guest exports the host calls back into.
package entities
