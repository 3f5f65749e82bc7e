// Package shm maps the named shared-memory regions that back every ring
// and event slot in xshm. It is the C1 Shared Region of the design: the
// only durable coupling between the two processes. Once a region is
// mapped, all further coordination is atomic operations on shared words
// and kernel waits on shared event slots — see pkg/ring and pkg/events.
package shm

import "github.com/srediag/xshm/internal/log"

var logger = log.New("shm")

// Options configures Create or Open.
type Options struct {
	// Name identifies the region in the platform-local namespace (no
	// path separators; the implementation picks the namespace, e.g.
	// /dev/shm on Linux).
	Name string
	// Size is the exact byte length of the mapping. Callers (pkg/ring)
	// are responsible for reserving header + payload space.
	Size int
	// Exclusive, when set on Create, fails with xerr.Exists if the named
	// region already exists instead of adopting it. Default is
	// create-or-open: see region_linux.go's doc comment for the exact
	// rule this implementation follows.
	Exclusive bool
}

// Region is one process's mapping of a named shared-memory object.
type Region struct {
	Addr    []byte
	name    string
	creator bool
	closed  bool
}

// Name returns the region's namespace-local name.
func (r *Region) Name() string { return r.name }

// Size returns the mapped length in bytes.
func (r *Region) Size() int { return len(r.Addr) }
