package ring

import (
	"encoding/binary"

	"github.com/srediag/xshm/internal/xerr"
)

// MaxRecord is the upper bound on one record's payload length. It is a
// package constant rather than a per-channel option.
const MaxRecord = 65535

// lengthPrefixSize is the 4-byte little-endian record length written
// before every payload.
const lengthPrefixSize = 4

// ByteStream is the variable-length, overwrite-on-overrun ring (spec
// §4.3). Unlike Bounded it assumes exactly one consumer: the drop-oldest
// step in Write mutates ReadPos itself, and nothing here coordinates that
// against a second consumer doing the same.
//
// ByteStream never blocks and never touches the event set — it is a pure
// lock-free data structure. Blocking reads with a timeout are
// pkg/channel's job: wait on DATA_AVAILABLE, then call TryRead.
type ByteStream struct {
	hdr     *Header
	payload []byte
}

// InitByteStream formats buf as a fresh ByteStream ring with size bytes of
// payload. size must be a power of two. A record fits only if its length
// plus the 4-byte prefix is at most size, so a MaxRecord-length record
// needs a size of at least MaxRecord+4.
func InitByteStream(buf []byte, size uint32) (*ByteStream, error) {
	if !isPowerOfTwo(size) {
		return nil, xerr.New(xerr.InvalidParam, "size must be a power of two")
	}
	need := uint64(HeaderSize) + uint64(size)
	if uint64(len(buf)) < need {
		return nil, xerr.New(xerr.InvalidParam, "buffer too small for size")
	}
	h := headerFromBytes(buf)
	initHeader(h, size)
	return &ByteStream{hdr: h, payload: buf[HeaderSize:need]}, nil
}

// OpenByteStream maps an existing ByteStream ring.
func OpenByteStream(buf []byte, size uint32) (*ByteStream, error) {
	h := headerFromBytes(buf)
	if err := validateMapping(h, size); err != nil {
		return nil, err
	}
	need := uint64(HeaderSize) + uint64(h.Size)
	if uint64(len(buf)) < need {
		return nil, xerr.New(xerr.InvalidParam, "buffer too small for existing ring")
	}
	return &ByteStream{hdr: h, payload: buf[HeaderSize:need]}, nil
}

// Header exposes the shared header so pkg/channel can read/mutate
// ActiveReaders for the presence protocol.
func (s *ByteStream) Header() *Header { return s.hdr }

// Available reports the number of live payload bytes currently queued.
func (s *ByteStream) Available() uint32 {
	return s.hdr.WritePos.Load() - s.hdr.ReadPos.Load()
}

// FreeSpace reports how many bytes could be written without dropping
// anything.
func (s *ByteStream) FreeSpace() uint32 {
	return s.hdr.Size - s.Available()
}

// put copies data into the payload starting at byte offset off, wrapping
// at the end of the buffer. off must already be in [0, size).
func (s *ByteStream) put(off uint32, data []byte) {
	size := s.hdr.Size
	first := size - off
	if uint32(len(data)) <= first {
		copy(s.payload[off:], data)
		return
	}
	copy(s.payload[off:], data[:first])
	copy(s.payload[:uint32(len(data))-first], data[first:])
}

// get is put's mirror image for reads.
func (s *ByteStream) get(off uint32, out []byte) {
	size := s.hdr.Size
	first := size - off
	if uint32(len(out)) <= first {
		copy(out, s.payload[off:off+uint32(len(out))])
		return
	}
	copy(out, s.payload[off:])
	copy(out[first:], s.payload[:uint32(len(out))-first])
}

func (s *ByteStream) putLen(off uint32, v uint32) {
	var b [lengthPrefixSize]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.put(off, b[:])
}

func (s *ByteStream) getLen(off uint32) uint32 {
	var b [lengthPrefixSize]byte
	s.get(off, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// Write always succeeds for a record within MaxRecord and the payload
// size, dropping the oldest queued records to make room if necessary. It
// returns how many records were dropped to make that room, so a caller
// that cares (pkg/channel's metrics) can count them. The caller is
// responsible for signaling DATA_AVAILABLE afterward — this method only
// touches the ring, never the event set.
func (s *ByteStream) Write(rec []byte) (dropped int, err error) {
	n := uint32(len(rec))
	if n > MaxRecord || uint64(n)+lengthPrefixSize > uint64(s.hdr.Size) {
		return 0, xerr.New(xerr.InvalidParam, "record exceeds ring capacity")
	}
	required := lengthPrefixSize + n

	for {
		wp := s.hdr.WritePos.Load()
		rp := s.hdr.ReadPos.Load()
		if s.hdr.Size-(wp-rp) >= required {
			break
		}
		recLen := s.getLen(rp & s.hdr.Mask)
		drop := lengthPrefixSize + recLen
		if !s.hdr.ReadPos.CompareAndSwap(rp, rp+drop) {
			continue // another dropper or the consumer moved read_pos; reload and retry
		}
		dropped++
	}

	wp := s.hdr.WritePos.Load()
	off := wp & s.hdr.Mask
	s.putLen(off, n)
	s.put((off+lengthPrefixSize)&s.hdr.Mask, rec)
	s.hdr.WritePos.Store(wp + required)
	return dropped, nil
}

// TryRead copies the oldest queued record into out and advances ReadPos.
// It returns xerr.Empty immediately if the ring has nothing queued;
// blocking-with-timeout semantics live in pkg/channel, one layer up.
func (s *ByteStream) TryRead(out []byte) (int, error) {
	wp := s.hdr.WritePos.Load()
	rp := s.hdr.ReadPos.Load()
	if wp == rp {
		return 0, xerr.New(xerr.Empty, "")
	}
	off := rp & s.hdr.Mask
	n := s.getLen(off)
	if uint32(len(out)) < n {
		return 0, xerr.New(xerr.InvalidParam, "output buffer smaller than record")
	}
	s.get((off+lengthPrefixSize)&s.hdr.Mask, out[:n])
	s.hdr.ReadPos.Store(rp + lengthPrefixSize + n)
	return int(n), nil
}

// Peek is TryRead without advancing ReadPos.
func (s *ByteStream) Peek(out []byte) (int, error) {
	wp := s.hdr.WritePos.Load()
	rp := s.hdr.ReadPos.Load()
	if wp == rp {
		return 0, xerr.New(xerr.Empty, "")
	}
	off := rp & s.hdr.Mask
	n := s.getLen(off)
	if uint32(len(out)) < n {
		return 0, xerr.New(xerr.InvalidParam, "output buffer smaller than record")
	}
	s.get((off+lengthPrefixSize)&s.hdr.Mask, out[:n])
	return int(n), nil
}
