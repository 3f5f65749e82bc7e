// Package events implements the Event Set (C3): five named, auto-reset
// wake-up slots a writer signals and a listener waits on. The original
// design behind this spec names each slot as its own OS kernel object; on
// this module's Linux target there is no such object, so all five slots
// (plus one internal "any" counter WaitAny waits on) live as adjacent
// words in one small shared-memory region, and a futex on each word
// stands in for CreateEvent/SetEvent.
package events

import (
	"sync/atomic"
	"unsafe"

	"github.com/srediag/xshm/internal/log"
	"github.com/srediag/xshm/internal/shm"
	"github.com/srediag/xshm/internal/xerr"
)

var logger = log.New("events")

// Kind identifies one of the five event slots.
type Kind int

const (
	DataAvailable Kind = iota
	SpaceAvailable
	Disconnect
	Error
	Connect
)

// descriptor drives Kind's metadata from a table: adding a slot is a row
// here, not a new case in every switch that touches the event set.
type descriptor struct {
	kind  Kind
	label string
}

var table = []descriptor{
	{DataAvailable, "DATA"},
	{SpaceAvailable, "SPACE"},
	{Disconnect, "DISCONNECT"},
	{Error, "ERROR"},
	{Connect, "CONNECT"},
}

// Label returns the slot's external-naming word, e.g. "DATA" for
// DataAvailable. All five slots live in one "SHM_EVENTS_<name>" region, so
// no platform object is named after a label; it is used for display, such
// as audit log lines.
func (k Kind) Label() string {
	for _, d := range table {
		if d.kind == k {
			return d.label
		}
	}
	return "UNKNOWN"
}

// Role selects creator (Server) vs opener (Client) semantics, mirroring
// internal/shm.Create vs internal/shm.Open.
type Role int

const (
	Server Role = iota
	Client
)

// slotCount is one atomic.Uint32 per table row, plus one trailing "any"
// counter WaitAny blocks on. It must track len(table)+1; Go arrays need a
// compile-time size, so adding a sixth Kind means bumping this too.
const slotCount = 6

const anyIndex = slotCount - 1

// words is the layout of the backing region: slotCount consecutive
// uint32s, 4-byte aligned, which is all futex requires.
type words struct {
	slots [slotCount]atomic.Uint32
}

func wordsFromBytes(buf []byte) *words {
	return (*words)(unsafe.Pointer(&buf[0]))
}

// Set is one channel's Event Set: five named slots plus the internal
// wait-any counter, backed by a shared region separate from the data
// rings.
type Set struct {
	region *shm.Region
	w      *words
}

func regionName(base string) string {
	return "SHM_EVENTS_" + base
}

func regionSize() int {
	return slotCount * 4
}

// Create opens or creates the named event set depending on role. Server
// creates a fresh, all-unsignalled region; Client opens the server's.
func Create(name string, role Role) (*Set, error) {
	rn := regionName(name)
	var region *shm.Region
	var err error
	switch role {
	case Server:
		region, err = shm.Create(shm.Options{Name: rn, Size: regionSize(), Exclusive: true})
	case Client:
		region, err = shm.Open(rn, regionSize())
	default:
		return nil, xerr.New(xerr.InvalidParam, "unknown role")
	}
	if err != nil {
		return nil, err
	}
	logger.Debugf("event set %q role=%d ready", name, role)
	return &Set{region: region, w: wordsFromBytes(region.Addr)}, nil
}

// Close releases this process's mapping of the event set.
func (s *Set) Close() error {
	return s.region.Close()
}

func (s *Set) word(k Kind) *atomic.Uint32 {
	return &s.w.slots[int(k)]
}

func (s *Set) anyWord() *atomic.Uint32 {
	return &s.w.slots[anyIndex]
}

// Signal transitions kind to signalled, waking at most one waiter on that
// slot, and bumps the shared "any" counter so a concurrent WaitAny wakes
// too.
func (s *Set) Signal(kind Kind) error {
	s.word(kind).Store(1)
	if err := shm.FutexWake(s.word(kind), false); err != nil {
		return err
	}
	s.anyWord().Add(1)
	return shm.FutexWake(s.anyWord(), true)
}

// Wait blocks until kind is signalled or timeoutMillis elapses (0 or
// negative waits indefinitely), consuming the signal (auto-reset).
func (s *Set) Wait(kind Kind, timeoutMillis int64) error {
	w := s.word(kind)
	if w.CompareAndSwap(1, 0) {
		return nil
	}
	if err := shm.FutexWait(w, 0, timeoutMillis); err != nil {
		return err
	}
	if w.CompareAndSwap(1, 0) {
		return nil
	}
	// Woken but nothing to claim: another waiter got there first, or the
	// wake was spurious. Report it the same as a timeout; the caller's
	// retry loop (the Listener) treats both identically.
	return xerr.New(xerr.Timeout, "")
}

// WaitAny blocks until any slot signals, returning which kind fired.
func (s *Set) WaitAny(timeoutMillis int64) (Kind, error) {
	if k, ok := s.firstSignalled(); ok {
		return k, nil
	}
	seq := s.anyWord().Load()
	if err := shm.FutexWait(s.anyWord(), seq, timeoutMillis); err != nil {
		return 0, err
	}
	if k, ok := s.firstSignalled(); ok {
		return k, nil
	}
	return 0, xerr.New(xerr.Timeout, "")
}

func (s *Set) firstSignalled() (Kind, bool) {
	for _, d := range table {
		if s.word(d.kind).CompareAndSwap(1, 0) {
			return d.kind, true
		}
	}
	return 0, false
}
