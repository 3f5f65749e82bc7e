package ring

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	SeqID  uint32
	Offset uint32
	Status uint32
}

func newBoundedBuf(capacity uint32) []byte {
	var zero sample
	return make([]byte, uint64(HeaderSize)+uint64(capacity)*uint64(unsafe.Sizeof(zero)))
}

func TestBoundedTryWriteFullThenDrain(t *testing.T) {
	buf := newBoundedBuf(4)
	b, err := InitBounded[sample](buf, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		ok := b.TryWrite(sample{SeqID: uint32(i), Offset: uint32(i), Status: uint32(i)})
		assert.True(t, ok, "slot %d should have room", i)
	}
	assert.False(t, b.TryWrite(sample{SeqID: 99}), "ring should report full on the 5th write")

	for i := 0; i < 4; i++ {
		item, seq, ok := b.TryReadBorrow()
		require.True(t, ok)
		assert.Equal(t, uint32(i), item.SeqID)
		assert.True(t, b.CommitRead(seq))
	}
	_, _, ok := b.TryReadBorrow()
	assert.False(t, ok, "ring should be empty after draining everything written")
}

func TestBoundedOpenMirrorsInit(t *testing.T) {
	buf := newBoundedBuf(8)
	creator, err := InitBounded[sample](buf, 8)
	require.NoError(t, err)
	require.True(t, creator.TryWrite(sample{SeqID: 42}))

	opener, err := OpenBounded[sample](buf, 8)
	require.NoError(t, err)
	item, seq, ok := opener.TryReadBorrow()
	require.True(t, ok)
	assert.Equal(t, uint32(42), item.SeqID)
	assert.True(t, opener.CommitRead(seq))
}

func TestBoundedCapacityMustBePowerOfTwo(t *testing.T) {
	_, err := InitBounded[sample](newBoundedBuf(3), 3)
	assert.Error(t, err)
}

// TestBoundedCommitRace exercises the sequence guard directly: two
// goroutines borrow the same position, only one of their commits may
// succeed, and the loser must observe stale.
func TestBoundedCommitRace(t *testing.T) {
	buf := newBoundedBuf(2)
	b, err := InitBounded[sample](buf, 2)
	require.NoError(t, err)
	require.True(t, b.TryWrite(sample{SeqID: 7}))

	_, seq1, ok1 := b.TryReadBorrow()
	require.True(t, ok1)
	_, seq2, ok2 := b.TryReadBorrow()
	require.True(t, ok2)
	assert.Equal(t, seq1, seq2, "both borrows see the same snapshot before either commits")

	var wg sync.WaitGroup
	results := make([]bool, 2)
	wg.Add(2)
	go func() { defer wg.Done(); results[0] = b.CommitRead(seq1) }()
	go func() { defer wg.Done(); results[1] = b.CommitRead(seq2) }()
	wg.Wait()

	assert.True(t, results[0] != results[1], "exactly one commit should win")
	assert.Equal(t, uint32(1), b.hdr.ReadPos.Load(), "read_pos advances exactly once")
}
