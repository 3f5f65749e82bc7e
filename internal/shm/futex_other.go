//go:build !linux

package shm

import (
	"sync/atomic"

	"github.com/srediag/xshm/internal/xerr"
)

// TODO: Windows would wire this to WaitForSingleObject over a named Event
// (see original_source/shm_events.c); not ported yet, see region_windows.go.

func FutexWait(addr *atomic.Uint32, ifValue uint32, timeoutMillis int64) error {
	return xerr.New(xerr.Memory, "shm: futex not supported on this platform")
}

func FutexWake(addr *atomic.Uint32, wakeAll bool) error {
	return xerr.New(xerr.Memory, "shm: futex not supported on this platform")
}
