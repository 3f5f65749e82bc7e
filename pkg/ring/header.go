// Package ring implements the lock-free ring buffer (C2) that backs every
// data-carrying direction of a channel: Bounded for fixed-size slots,
// ByteStream for variable-length overwrite-on-overrun records. Both share
// one 64-byte cache-line-aligned header mapped directly over the shared
// region's first bytes.
package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/srediag/xshm/internal/xerr"
)

// HeaderSize is the fixed on-wire size of Header, matching offset 64 in
// the binary layout: write_pos, read_pos, size, mask, active_readers,
// sequence, then 40 bytes of padding to the next cache line.
const HeaderSize = 64

// Header is the first HeaderSize bytes of every ring's mapping. write_pos,
// read_pos, active_readers and sequence are cross-process atomics; size
// and mask are written once at creation and read-only afterward.
//
// write_pos and read_pos are unbounded monotonic counters (they wrap
// modulo 2^32, never modulo size): a slot or byte offset is always
// `pos & mask`. Fullness is therefore `write_pos - read_pos == size`, not
// a comparison against the masked positions themselves.
type Header struct {
	WritePos      atomic.Uint32 // offset 0
	ReadPos       atomic.Uint32 // offset 4
	Size          uint32        // offset 8, write-once
	Mask          uint32        // offset 12, write-once
	ActiveReaders atomic.Uint32 // offset 16
	Sequence      atomic.Uint32 // offset 20
	_             [40]byte      // offset 24..64, cache-line padding
}

func headerFromBytes(buf []byte) *Header {
	return (*Header)(unsafe.Pointer(&buf[0]))
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// initHeader writes size/mask once and zeroes the remaining fields. It is
// only ever called by the creator; openers must never call it.
func initHeader(h *Header, size uint32) {
	h.Size = size
	h.Mask = size - 1
	h.WritePos.Store(0)
	h.ReadPos.Store(0)
	h.ActiveReaders.Store(0)
	h.Sequence.Store(0)
}

// IncActiveReaders records a new consumer attaching to this ring. Only the
// writer's peer (the consumer side) calls this, per spec: the counter
// exists for the presence protocol, not allocation refcounting.
func (h *Header) IncActiveReaders() uint32 {
	return h.ActiveReaders.Add(1)
}

// DecActiveReaders records a consumer detaching. It never underflows past
// zero even if called more times than Inc (defensive against a double
// Close).
func (h *Header) DecActiveReaders() uint32 {
	for {
		v := h.ActiveReaders.Load()
		if v == 0 {
			return 0
		}
		if h.ActiveReaders.CompareAndSwap(v, v-1) {
			return v - 1
		}
	}
}

// ActiveReaderCount reports the current attached-consumer count.
func (h *Header) ActiveReaderCount() uint32 {
	return h.ActiveReaders.Load()
}

// Snapshot is a point-in-time, non-atomic-as-a-whole copy of a Header's
// fields for diagnostics (the debug-dump feature). Individual field reads
// are atomic; the combination is not a consistent transaction.
type Snapshot struct {
	WritePos      uint32
	ReadPos       uint32
	Size          uint32
	Mask          uint32
	ActiveReaders uint32
	Sequence      uint32
	Queued        uint32
}

// Snapshot reads every field of h for display or logging.
func (h *Header) Snapshot() Snapshot {
	wp := h.WritePos.Load()
	rp := h.ReadPos.Load()
	return Snapshot{
		WritePos:      wp,
		ReadPos:       rp,
		Size:          h.Size,
		Mask:          h.Mask,
		ActiveReaders: h.ActiveReaders.Load(),
		Sequence:      h.Sequence.Load(),
		Queued:        wp - rp,
	}
}

// validateMapping checks a caller-declared size/capacity against a header
// an opener did not itself initialize.
func validateMapping(h *Header, wantSize uint32) error {
	if wantSize != 0 && h.Size != wantSize {
		return xerr.New(xerr.InvalidParam, "ring size mismatch with existing mapping")
	}
	return nil
}
