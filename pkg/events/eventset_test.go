package events

import (
	"testing"
	"time"

	"github.com/srediag/xshm/internal/xerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testName(t *testing.T) string {
	return "xshm_test_" + t.Name()
}

func TestSignalThenWaitConsumesExactlyOnce(t *testing.T) {
	name := testName(t)
	srv, err := Create(name, Server)
	require.NoError(t, err)
	defer srv.Close()

	require.NoError(t, srv.Signal(DataAvailable))
	require.NoError(t, srv.Wait(DataAvailable, 50))

	err = srv.Wait(DataAvailable, 20)
	assert.ErrorIs(t, err, xerr.TimeoutError, "second wait on an already-consumed slot must time out")
}

func TestWaitTimesOutWithoutSignal(t *testing.T) {
	name := testName(t)
	srv, err := Create(name, Server)
	require.NoError(t, err)
	defer srv.Close()

	err = srv.Wait(Connect, 20)
	assert.ErrorIs(t, err, xerr.TimeoutError)
}

func TestWaitAnyReportsTheSignalledKind(t *testing.T) {
	name := testName(t)
	srv, err := Create(name, Server)
	require.NoError(t, err)
	defer srv.Close()

	require.NoError(t, srv.Signal(Disconnect))
	kind, err := srv.WaitAny(50)
	require.NoError(t, err)
	assert.Equal(t, Disconnect, kind)
}

func TestWaitAnyWakesOnConcurrentSignal(t *testing.T) {
	name := testName(t)
	srv, err := Create(name, Server)
	require.NoError(t, err)
	defer srv.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = srv.Signal(Connect)
	}()

	kind, err := srv.WaitAny(500)
	require.NoError(t, err)
	assert.Equal(t, Connect, kind)
}

func TestClientOpensServerCreatedSet(t *testing.T) {
	name := testName(t)
	srv, err := Create(name, Server)
	require.NoError(t, err)
	defer srv.Close()

	cli, err := Create(name, Client)
	require.NoError(t, err)
	defer cli.Close()

	require.NoError(t, srv.Signal(Error))
	require.NoError(t, cli.Wait(Error, 50))
}

func TestKindLabelsMatchSpecNamingConvention(t *testing.T) {
	cases := map[Kind]string{
		DataAvailable:  "DATA",
		SpaceAvailable: "SPACE",
		Disconnect:     "DISCONNECT",
		Error:          "ERROR",
		Connect:        "CONNECT",
	}
	for kind, label := range cases {
		assert.Equal(t, label, kind.Label())
	}
}
