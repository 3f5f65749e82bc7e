package ring

import (
	"unsafe"

	"github.com/srediag/xshm/internal/xerr"
)

// Bounded is the fixed-slot, reject-full ring (spec §4.2). T is the slot
// type; its size is fixed at instantiation and every slot in the payload
// is exactly unsafe.Sizeof(T) bytes.
//
// TryWrite/TryReadBorrow/CommitRead never retry internally: a failed
// TryWrite is backpressure, an empty TryReadBorrow is "nothing yet", and a
// stale CommitRead means another goroutine's commit won the race on this
// borrow — the caller decides whether and how to retry.
type Bounded[T any] struct {
	hdr      *Header
	slots    []byte
	capacity uint32
	slotSize uintptr
}

// InitBounded formats buf as a fresh Bounded ring with room for exactly
// capacity slots of T. capacity must be a power of two. buf must be at
// least HeaderSize + capacity*sizeof(T) bytes; the caller (pkg/shm) owns
// the mapping's lifetime.
func InitBounded[T any](buf []byte, capacity uint32) (*Bounded[T], error) {
	var zero T
	slotSize := unsafe.Sizeof(zero)
	if !isPowerOfTwo(capacity) {
		return nil, xerr.New(xerr.InvalidParam, "capacity must be a power of two")
	}
	need := HeaderSize + uint64(capacity)*uint64(slotSize)
	if uint64(len(buf)) < need {
		return nil, xerr.New(xerr.InvalidParam, "buffer too small for capacity")
	}
	h := headerFromBytes(buf)
	initHeader(h, capacity)
	return &Bounded[T]{
		hdr:      h,
		slots:    buf[HeaderSize:need],
		capacity: capacity,
		slotSize: slotSize,
	}, nil
}

// OpenBounded maps an existing Bounded ring that some other process
// already initialized with InitBounded. capacity is validated against the
// header's recorded size, not re-written.
func OpenBounded[T any](buf []byte, capacity uint32) (*Bounded[T], error) {
	var zero T
	slotSize := unsafe.Sizeof(zero)
	h := headerFromBytes(buf)
	if err := validateMapping(h, capacity); err != nil {
		return nil, err
	}
	need := HeaderSize + uint64(h.Size)*uint64(slotSize)
	if uint64(len(buf)) < need {
		return nil, xerr.New(xerr.InvalidParam, "buffer too small for existing ring")
	}
	return &Bounded[T]{
		hdr:      h,
		slots:    buf[HeaderSize:need],
		capacity: h.Size,
		slotSize: slotSize,
	}, nil
}

func (b *Bounded[T]) slotAt(idx uint32) *T {
	return (*T)(unsafe.Pointer(&b.slots[uintptr(idx)*b.slotSize]))
}

// Header exposes the shared header so pkg/channel can read/mutate
// ActiveReaders for the presence protocol.
func (b *Bounded[T]) Header() *Header { return b.hdr }

// Capacity returns the number of slots, fixed at creation.
func (b *Bounded[T]) Capacity() uint32 { return b.capacity }

// Available reports how many committed-but-unread slots currently exist.
func (b *Bounded[T]) Available() uint32 {
	return b.hdr.WritePos.Load() - b.hdr.ReadPos.Load()
}

// TryWrite copies item into the next free slot. It returns false without
// touching any reader-visible state if the ring is full. It assumes a
// single producer: the slot is written before the CAS on WritePos, so a
// second concurrent writer that loses the CAS has already overwritten the
// slot the winner just published, and then returns false.
func (b *Bounded[T]) TryWrite(item T) bool {
	wp := b.hdr.WritePos.Load()
	rp := b.hdr.ReadPos.Load()
	if wp-rp >= b.capacity {
		return false
	}
	idx := wp & b.hdr.Mask
	*b.slotAt(idx) = item
	return b.hdr.WritePos.CompareAndSwap(wp, wp+1)
}

// TryReadBorrow returns a pointer into the slot at the current read
// position plus the sequence value that must still hold at CommitRead
// time. It does not advance ReadPos, so the same logical position may be
// borrowed by more than one goroutine before either commits.
func (b *Bounded[T]) TryReadBorrow() (item *T, sequence uint32, ok bool) {
	wp := b.hdr.WritePos.Load()
	rp := b.hdr.ReadPos.Load()
	if wp == rp {
		return nil, 0, false
	}
	idx := rp & b.hdr.Mask
	return b.slotAt(idx), b.hdr.Sequence.Load(), true
}

// CommitRead advances ReadPos by one, but only if sequence still matches
// the live header value — i.e. no other goroutine already committed this
// borrow. A false return means the borrow is stale: the caller must
// discard whatever it copied out of the slot and retry with a fresh
// TryReadBorrow, since the producer may have already overwritten it.
func (b *Bounded[T]) CommitRead(sequence uint32) bool {
	if !b.hdr.Sequence.CompareAndSwap(sequence, sequence+1) {
		return false
	}
	b.hdr.ReadPos.Add(1)
	return true
}
