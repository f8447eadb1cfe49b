// Package ports defines the interfaces the bridge needs from its host.
// Infrastructure adapters implement them; the bridge depends only on these
// abstractions.
package ports
