package channel

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// registry tracks every DualChannel this process currently has open, keyed
// by name. It exists for diagnostics (Lookup, then DebugDump by name) and
// to catch a process accidentally calling Serve or
// Connect twice for the same name instead of reusing the handle.
var registry = cmap.New[*DualChannel]()

func registerChannel(c *DualChannel) error {
	if !registry.SetIfAbsent(c.name, c) {
		return ErrAlreadyOpen
	}
	return nil
}

func unregisterChannel(name string) {
	registry.Remove(name)
}

// Lookup returns a channel this process already has open under name, for
// code that doesn't have the *DualChannel handle in scope (e.g. a signal
// handler doing an orderly shutdown sweep).
func Lookup(name string) (*DualChannel, bool) {
	return registry.Get(name)
}

// Open returns the names of every channel currently registered in this
// process.
func Open() []string {
	return registry.Keys()
}
