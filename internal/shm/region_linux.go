//go:build linux

package shm

import (
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/srediag/xshm/internal/xerr"
)

const defaultPerm = 0o600

// namespaceDir is where named regions live. /dev/shm is a tmpfs mount on
// every mainstream Linux distribution and is the platform-local namespace
// region names resolve into.
const namespaceDir = "/dev/shm"

// Create implements create-or-open semantics: if opts.Exclusive is unset
// (the default), a second process racing to create the same name adopts
// the existing mapping instead of failing. Pass Exclusive=true for strict
// create semantics (xerr.Exists if the name is already taken).
func Create(opts Options) (*Region, error) {
	if opts.Size <= 0 {
		return nil, xerr.New(xerr.InvalidParam, "size must be positive")
	}
	path := filepath.Join(namespaceDir, opts.Name)

	flags := unix.O_CREAT | unix.O_RDWR
	if opts.Exclusive {
		flags |= unix.O_EXCL
	}
	fd, err := unix.Open(path, flags, defaultPerm)
	if err != nil {
		if err == unix.EEXIST {
			return nil, xerr.New(xerr.Exists, opts.Name)
		}
		return nil, xerr.New(xerr.Memory, "open: "+err.Error())
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.Memory, "fstat: "+err.Error())
	}
	created := st.Size == 0
	if created {
		if err := unix.Ftruncate(fd, int64(opts.Size)); err != nil {
			_ = unix.Close(fd)
			return nil, xerr.New(xerr.Memory, "ftruncate: "+err.Error())
		}
	} else if int(st.Size) != opts.Size {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.InvalidParam, "existing region size mismatch")
	}

	addr, mErr := unix.Mmap(fd, 0, opts.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mErr != nil {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.Memory, "mmap: "+mErr.Error())
	}
	if created {
		for i := range addr {
			addr[i] = 0
		}
	}
	// The fd is not needed once mapped; Linux keeps the mapping alive
	// independent of the descriptor.
	_ = unix.Close(fd)

	logger.Infof("region %q created=%v size=%d", opts.Name, created, opts.Size)
	return &Region{Addr: addr, name: opts.Name, creator: true}, nil
}

// Open maps an existing region. It fails with xerr.NotFound if the name
// does not exist.
func Open(name string, size int) (*Region, error) {
	path := filepath.Join(namespaceDir, name)
	fd, err := unix.Open(path, unix.O_RDWR, defaultPerm)
	if err != nil {
		if err == unix.ENOENT {
			return nil, xerr.New(xerr.NotFound, name)
		}
		return nil, xerr.New(xerr.Access, "open: "+err.Error())
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.Access, "fstat: "+err.Error())
	}
	if size > 0 && int(st.Size) != size {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.InvalidParam, "region size mismatch")
	}

	addr, mErr := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mErr != nil {
		_ = unix.Close(fd)
		return nil, xerr.New(xerr.Memory, "mmap: "+mErr.Error())
	}
	_ = unix.Close(fd)

	return &Region{Addr: addr, name: name}, nil
}

var closeOnce sync.Map // name -> *sync.Once, guards double-unlink races within this process

// Close unmaps this process's view. If the view came from Create (whether
// that call made the region or adopted an existing one), it also unlinks
// the name so a fresh Create can start clean; processes
// that already have it mapped keep a valid mapping until they too call
// Close (POSIX unlink-while-mapped semantics). Close is idempotent.
func (r *Region) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	if r.Addr != nil {
		if err := unix.Munmap(r.Addr); err != nil {
			return xerr.New(xerr.Access, "munmap: "+err.Error())
		}
		r.Addr = nil
	}
	if r.creator {
		once, _ := closeOnce.LoadOrStore(r.name, &sync.Once{})
		once.(*sync.Once).Do(func() {
			path := filepath.Join(namespaceDir, r.name)
			if err := unix.Unlink(path); err != nil && err != unix.ENOENT {
				logger.Warnf("region %q unlink failed: %v", r.name, err)
			}
			closeOnce.Delete(r.name)
		})
	}
	return nil
}
