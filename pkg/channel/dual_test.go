package channel

import (
	"context"
	"testing"
	"time"

	"github.com/srediag/xshm/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c *DualChannel, name string) float64 {
	t.Helper()
	families, err := c.metrics.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var total float64
		for _, m := range f.Metric {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func testChannelName(t *testing.T) string {
	return "xshm_test_" + t.Name()
}

func serveAndConnect(t *testing.T, opts ...Option) (*DualChannel, *DualChannel) {
	t.Helper()
	name := testChannelName(t)
	srv, err := Serve(name, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	cli, err := Connect(context.Background(), name, append(opts, WithConnectRetries(20), WithRetryInterval(time.Millisecond))...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return srv, cli
}

func TestSendReceiveRoundTripBothDirections(t *testing.T) {
	srv, cli := serveAndConnect(t, WithSize(4096))
	ctx := context.Background()

	require.NoError(t, srv.Send(ctx, []byte("ping")))
	got, err := cli.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)

	require.NoError(t, cli.Send(ctx, []byte("pong")))
	got, err = srv.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), got)
}

func TestReceiveNonBlockingReturnsEmptyWithNothingQueued(t *testing.T) {
	srv, _ := serveAndConnect(t, WithSize(4096), WithBlocking(false))
	_, err := srv.Receive(context.Background())
	assert.ErrorIs(t, err, xerr.EmptyError)
}

func TestReceiveBlockingTimesOutWithNothingQueued(t *testing.T) {
	srv, _ := serveAndConnect(t, WithSize(4096), WithBlocking(true), WithTimeout(20))
	_, err := srv.Receive(context.Background())
	assert.ErrorIs(t, err, xerr.TimeoutError)
}

func TestStrictPeerRejectsSendWithNoActiveReader(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096), WithStrictPeer(true))
	require.NoError(t, err)
	defer srv.Close()

	err = srv.Send(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrNoPeer)
}

func TestPeerPresentTracksClientAttachAndDetach(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	defer srv.Close()

	assert.False(t, srv.PeerPresent())

	cli, err := Connect(context.Background(), name, WithSize(4096), WithConnectRetries(20), WithRetryInterval(time.Millisecond))
	require.NoError(t, err)
	assert.True(t, srv.PeerPresent())

	require.NoError(t, cli.Close())
	assert.False(t, srv.PeerPresent())
}

func TestCloseIsIdempotent(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)

	require.NoError(t, srv.Close())
	require.NoError(t, srv.Close())
}

func TestOperationsAfterCloseReturnErrClosed(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	assert.ErrorIs(t, srv.Send(context.Background(), []byte("x")), ErrClosed)
	_, err = srv.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendOverrunIncrementsRecordsDroppedMetric(t *testing.T) {
	// 32 bytes of payload holds exactly four 4-byte records (8 bytes each
	// with the length prefix); a fifth forces one drop.
	srv, _ := serveAndConnect(t, WithSize(32))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, srv.Send(ctx, []byte{byte(i), byte(i), byte(i), byte(i)}))
	}
	assert.Equal(t, float64(0), counterValue(t, srv, "xshm_records_dropped_total"))

	require.NoError(t, srv.Send(ctx, []byte{9, 9, 9, 9}))
	assert.Equal(t, float64(1), counterValue(t, srv, "xshm_records_dropped_total"))
}

func TestDebugDumpReflectsWrittenBytes(t *testing.T) {
	srv, cli := serveAndConnect(t, WithSize(4096))
	require.NoError(t, srv.Send(context.Background(), []byte("hello")))

	dump := srv.DebugDump()
	assert.Equal(t, uint32(9), dump.Out.Queued) // 4-byte length prefix + "hello"
	_ = cli
}
