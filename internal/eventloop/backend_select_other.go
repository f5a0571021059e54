//go:build !linux

package eventloop

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// selectSetSize mirrors FD_SETSIZE, the fixed capability ceiling every
// select-based backend inherits from the syscall's fd_set layout.
const selectSetSize = unix.FD_SETSIZE

// selectBackend is the portable fallback used on platforms without epoll,
// grounded on ev_select.c's api_create/api_add_event/api_del_event/
// api_await quartet. Its defining limitation, matching the original, is
// the fixed FD_SETSIZE capacity check in AddEvent.
type selectBackend struct {
	maxFD      int
	readFDs    map[int]bool
	writeFDs   map[int]bool
}

func newSelectBackend() Backend {
	return &selectBackend{readFDs: make(map[int]bool), writeFDs: make(map[int]bool)}
}

func (b *selectBackend) Create(setsize int) error {
	if setsize > selectSetSize {
		setsize = selectSetSize
	}
	b.maxFD = -1
	return nil
}

func (b *selectBackend) AddEvent(fd int, mask EventType) error {
	if fd >= selectSetSize {
		return &ErrTooManyFDs{FD: fd, SetSize: selectSetSize}
	}
	if mask&Read != 0 {
		b.readFDs[fd] = true
	}
	if mask&Write != 0 {
		b.writeFDs[fd] = true
	}
	if fd > b.maxFD {
		b.maxFD = fd
	}
	return nil
}

func (b *selectBackend) DelEvent(fd int, mask EventType) error {
	if mask&Read != 0 {
		delete(b.readFDs, fd)
	}
	if mask&Write != 0 {
		delete(b.writeFDs, fd)
	}
	return nil
}

func (b *selectBackend) Poll(timeoutMs int) ([]FiredEvent, error) {
	if b.maxFD < 0 {
		return nil, nil
	}
	var rset, wset unix.FdSet
	for fd := range b.readFDs {
		fdSetAdd(&rset, fd)
	}
	for fd := range b.writeFDs {
		fdSetAdd(&wset, fd)
	}
	var tv *unix.Timeval
	if timeoutMs >= 0 {
		t := unix.NsecToTimeval(int64(timeoutMs) * 1_000_000)
		tv = &t
	}
	n, err := unix.Select(b.maxFD+1, &rset, &wset, nil, tv)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "select")
	}
	fired := make([]FiredEvent, 0, n)
	for fd := range b.readFDs {
		if fdSetIsSet(&rset, fd) {
			fired = append(fired, FiredEvent{FD: fd, Mask: Read})
		}
	}
	for fd := range b.writeFDs {
		if fdSetIsSet(&wset, fd) {
			fired = append(fired, FiredEvent{FD: fd, Mask: Write})
		}
	}
	return fired, nil
}

func (b *selectBackend) Close() error { return nil }

func (b *selectBackend) Name() string { return "select" }

func fdSetAdd(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdSetIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// NewDefaultBackend returns the platform's preferred Backend.
func NewDefaultBackend() Backend { return newSelectBackend() }
