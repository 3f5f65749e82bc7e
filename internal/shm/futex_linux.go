//go:build linux

package shm

import (
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/srediag/xshm/internal/xerr"
)

const (
	futexWait uintptr = 0
	futexWake uintptr = 1
)

// FutexWait blocks while *addr == ifValue, up to timeoutMillis (0 or
// negative waits indefinitely). It is the primitive pkg/events builds
// Wait/WaitAny on; each event slot is one uint32 word in a Region.
func FutexWait(addr *atomic.Uint32, ifValue uint32, timeoutMillis int64) error {
	if timeoutMillis <= 0 {
		timeoutMillis = math.MaxInt32
	}
	var ts unix.Timespec
	ts.Sec = timeoutMillis / 1e3
	ts.Nsec = timeoutMillis % 1e3 * 1e6

	r, _, errno := unix.Syscall6(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWait,
		uintptr(ifValue),
		uintptr(unsafe.Pointer(&ts)),
		0, 0)
	if int32(r) >= 0 {
		return nil
	}
	switch errno {
	case unix.ETIMEDOUT:
		return xerr.New(xerr.Timeout, "")
	case unix.EAGAIN:
		// *addr had already changed before the kernel looked; treat as a
		// spurious wake, not an error.
		return nil
	default:
		return xerr.New(xerr.Access, "futex_wait: "+errno.Error())
	}
}

// FutexWake wakes waiters blocked on addr. wakeAll distinguishes the
// auto-reset single-waiter wake used on an event slot from the broadcast
// that every Signal issues on the shared "any" counter, so that every
// WaitAny caller re-checks the slots.
func FutexWake(addr *atomic.Uint32, wakeAll bool) error {
	n := uintptr(1)
	if wakeAll {
		n = uintptr(math.MaxInt32)
	}
	r, _, errno := unix.Syscall(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWake,
		n)
	if int32(r) >= 0 || errno == unix.ENOENT {
		return nil
	}
	return xerr.New(xerr.Access, "futex_wake: "+errno.Error())
}
