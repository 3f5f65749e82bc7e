package channel

import (
	"context"
	"testing"
	"time"

	"github.com/srediag/xshm/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeTwiceUnderSameNameFails(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	defer srv.Close()

	_, err = Serve(name, WithSize(4096))
	assert.Error(t, err)
}

func TestConnectGivesUpWithoutAServer(t *testing.T) {
	name := testChannelName(t)
	start := time.Now()
	_, err := Connect(context.Background(), name, WithConnectRetries(3), WithRetryInterval(time.Millisecond))
	assert.Error(t, err)
	assert.ErrorIs(t, err, xerr.NotFoundError)
	assert.Less(t, time.Since(start), time.Second, "bounded retries must not hang")
}

func TestLookupFindsARegisteredChannel(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	defer srv.Close()

	got, ok := Lookup(name)
	require.True(t, ok)
	assert.Same(t, srv, got)
}

func TestLookupMissesAfterClose(t *testing.T) {
	name := testChannelName(t)
	srv, err := Serve(name, WithSize(4096))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	_, ok := Lookup(name)
	assert.False(t, ok)
}
