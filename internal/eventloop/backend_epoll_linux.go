//go:build linux

package eventloop

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// epollBackend is the preferred Linux backend, grounded on ev_epoll.c's
// api_create/api_add_event/api_del_event/api_await quartet.
type epollBackend struct {
	epfd       int
	events     []unix.EpollEvent
	registered map[int]EventType
}

func newEpollBackend() Backend {
	return &epollBackend{registered: make(map[int]EventType)}
}

func (b *epollBackend) Create(setsize int) error {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return errors.Wrap(err, "epoll_create1")
	}
	b.epfd = fd
	b.events = make([]unix.EpollEvent, setsize)
	return nil
}

func toEpollEvents(mask EventType) uint32 {
	var ev uint32
	if mask&Read != 0 {
		ev |= unix.EPOLLIN
	}
	if mask&Write != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (b *epollBackend) AddEvent(fd int, mask EventType) error {
	prior, exists := b.registered[fd]
	combined := prior | mask
	ev := unix.EpollEvent{Events: toEpollEvents(combined), Fd: int32(fd)}
	op := unix.EPOLL_CTL_ADD
	if exists {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(b.epfd, op, fd, &ev); err != nil {
		return errors.Wrapf(err, "epoll_ctl fd=%d", fd)
	}
	b.registered[fd] = combined
	return nil
}

func (b *epollBackend) DelEvent(fd int, mask EventType) error {
	prior, exists := b.registered[fd]
	if !exists {
		return nil
	}
	remaining := prior &^ mask
	if remaining == 0 {
		delete(b.registered, fd)
		if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
			return errors.Wrapf(err, "epoll_ctl del fd=%d", fd)
		}
		return nil
	}
	b.registered[fd] = remaining
	ev := unix.EpollEvent{Events: toEpollEvents(remaining), Fd: int32(fd)}
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return errors.Wrapf(err, "epoll_ctl mod fd=%d", fd)
	}
	return nil
}

func (b *epollBackend) Poll(timeoutMs int) ([]FiredEvent, error) {
	n, err := unix.EpollWait(b.epfd, b.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "epoll_wait")
	}
	fired := make([]FiredEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := b.events[i]
		var mask EventType
		if ev.Events&unix.EPOLLIN != 0 {
			mask |= Read
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			mask |= Write
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			mask |= Read | Write
		}
		fired = append(fired, FiredEvent{FD: int(ev.Fd), Mask: mask})
	}
	return fired, nil
}

func (b *epollBackend) Close() error {
	return unix.Close(b.epfd)
}

func (b *epollBackend) Name() string { return "epoll" }

// NewDefaultBackend returns the platform's preferred Backend.
func NewDefaultBackend() Backend { return newEpollBackend() }
