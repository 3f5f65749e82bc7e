package ring

import (
	"testing"

	"github.com/srediag/xshm/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newByteStreamBuf(size uint32) []byte {
	return make([]byte, uint64(HeaderSize)+uint64(size))
}

func TestByteStreamRoundTrip(t *testing.T) {
	s, err := InitByteStream(newByteStreamBuf(256), 256)
	require.NoError(t, err)

	payload := []byte("ping-pong record")
	_, err = s.Write(payload)
	require.NoError(t, err)

	out := make([]byte, len(payload))
	n, err := s.TryRead(out)
	require.NoError(t, err)
	assert.Equal(t, payload, out[:n])

	_, err = s.TryRead(out)
	assert.ErrorIs(t, err, xerr.EmptyError)
}

func TestByteStreamPeekIsIdempotent(t *testing.T) {
	s, err := InitByteStream(newByteStreamBuf(256), 256)
	require.NoError(t, err)
	_, err = s.Write([]byte("hello"))
	require.NoError(t, err)

	out1 := make([]byte, 5)
	n1, err := s.Peek(out1)
	require.NoError(t, err)
	out2 := make([]byte, 5)
	n2, err := s.Peek(out2)
	require.NoError(t, err)

	assert.Equal(t, out1[:n1], out2[:n2], "peek must not consume the record")

	n3, err := s.TryRead(make([]byte, 5))
	require.NoError(t, err)
	assert.Equal(t, n1, n3)
}

func TestByteStreamDropsOldestOnOverrun(t *testing.T) {
	// Each record costs 8 bytes (4-byte prefix + 4-byte payload); 4 of
	// them exactly fill a 32-byte ring, so a 5th forces a drop.
	s, err := InitByteStream(newByteStreamBuf(32), 32)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		dropped, werr := s.Write([]byte{byte(i), byte(i), byte(i), byte(i)})
		require.NoError(t, werr)
		assert.Equal(t, 0, dropped, "the ring isn't full yet")
	}
	dropped, err := s.Write([]byte{9, 9, 9, 9})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped, "exactly the oldest record should have been dropped to make room")

	out := make([]byte, 8)
	n, err := s.TryRead(out)
	require.NoError(t, err)
	assert.NotEqual(t, byte(0), out[0], "the oldest record (written with value 0) should have been dropped")
	_ = n
}

func TestByteStreamRecordTooLarge(t *testing.T) {
	s, err := InitByteStream(newByteStreamBuf(64), 64)
	require.NoError(t, err)
	_, err = s.Write(make([]byte, 62))
	assert.ErrorIs(t, err, xerr.InvalidParamError)
}

func TestByteStreamOutputBufferTooSmall(t *testing.T) {
	s, err := InitByteStream(newByteStreamBuf(256), 256)
	require.NoError(t, err)
	_, err = s.Write([]byte("0123456789"))
	require.NoError(t, err)

	_, err = s.TryRead(make([]byte, 4))
	assert.ErrorIs(t, err, xerr.InvalidParamError)
}

func TestByteStreamWrapAroundBoundary(t *testing.T) {
	s, err := InitByteStream(newByteStreamBuf(32), 32)
	require.NoError(t, err)

	// Push the write position near the end of the buffer so the next
	// record's payload straddles the wrap point.
	_, err = s.Write(make([]byte, 20))
	require.NoError(t, err)
	_, err = s.TryRead(make([]byte, 20))
	require.NoError(t, err)

	wrapping := []byte("0123456789")
	_, err = s.Write(wrapping)
	require.NoError(t, err)
	out := make([]byte, len(wrapping))
	n, err := s.TryRead(out)
	require.NoError(t, err)
	assert.Equal(t, wrapping, out[:n])
}
