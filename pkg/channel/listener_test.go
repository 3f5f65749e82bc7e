package channel

import (
	"context"
	"testing"
	"time"

	"github.com/srediag/xshm/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerDeliversDataAvailable(t *testing.T) {
	srv, cli := serveAndConnect(t, WithSize(4096))

	kinds := make(chan events.Kind, 4)
	l, err := srv.Listen(func(k events.Kind) { kinds <- k })
	require.NoError(t, err)
	defer l.Stop()

	require.NoError(t, cli.Send(context.Background(), []byte("hi")))

	select {
	case k := <-kinds:
		assert.Equal(t, events.DataAvailable, k)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for DATA_AVAILABLE")
	}
}

func TestListenerDetectsDisconnectOnPresencePoll(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	defer srv.Close()

	cli, err := Connect(context.Background(), name, WithSize(4096), WithConnectRetries(20), WithRetryInterval(time.Millisecond))
	require.NoError(t, err)

	kinds := make(chan events.Kind, 4)
	l, err := srv.Listen(func(k events.Kind) { kinds <- k })
	require.NoError(t, err)
	defer l.Stop()

	require.NoError(t, cli.Close())

	select {
	case k := <-kinds:
		assert.Equal(t, events.Disconnect, k)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the presence poll to notice DISCONNECT")
	}
}

func TestListenerDeliversExactlyOneConnectForLateClient(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	defer srv.Close()

	kinds := make(chan events.Kind, 8)
	l, err := srv.Listen(func(k events.Kind) { kinds <- k })
	require.NoError(t, err)
	defer l.Stop()

	cli, err := Connect(context.Background(), name, WithSize(4096), WithConnectRetries(20), WithRetryInterval(time.Millisecond))
	require.NoError(t, err)
	defer cli.Close()

	select {
	case k := <-kinds:
		assert.Equal(t, events.Connect, k)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for CONNECT")
	}

	// No second CONNECT should follow the first without an intervening
	// DISCONNECT (testable property 7, presence event pairing).
	select {
	case k := <-kinds:
		t.Fatalf("unexpected second event %v after a single attach", k)
	case <-time.After(3 * pollInterval):
	}
}

func TestListenerStopIsIdempotentAndUnblocksDispatch(t *testing.T) {
	srv, _ := serveAndConnect(t, WithSize(4096))

	l, err := srv.Listen(func(events.Kind) {})
	require.NoError(t, err)

	l.Stop()
	l.Stop() // must not panic or block a second time
}
