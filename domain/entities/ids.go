package entities

// NodeID is a guest-minted identifier for a host UI node.
// The root is always RootID and is supplied by the host.
type NodeID uint32

// RootID names the host-supplied root node. Protocol operations never create
// or dispose it.
const RootID NodeID = 0

// NoTarget is the pointer-event target id reported for nodes the registry
// does not know.
const NoTarget int32 = -1

// StashID identifies a staged byte payload. Zero is never minted.
type StashID uint32

// Token is an opaque guest correlation value returned unchanged with the
// completion of the operation it was issued for.
type Token int32

// ListenerID is a guest-minted identifier for an event listener registration.
type ListenerID uint32

// Handle identifies an open file or decompressed blob. Zero means failure.
type Handle uint32
