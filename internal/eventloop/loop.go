package eventloop

import (
	"reflect"

	"github.com/pkg/errors"
)

// fileEvent is the handler registration for one file descriptor, grounded
// on de.c's DeFileEvent (rfileProc/wfileProc/mask).
type fileEvent struct {
	readHandler  Handler
	writeHandler Handler
	sameHandler  bool // true when readHandler and writeHandler are the same callback
	invert       bool
	mask         EventType
}

// Loop is the single-threaded readiness-driven dispatcher, grounded on
// de.c's De struct: a Backend plus a registry of per-fd handlers.
type Loop struct {
	backend Backend
	events  map[int]*fileEvent
	stop    bool
}

// New constructs a Loop over backend, sized for up to setsize fds.
func New(backend Backend, setsize int) (*Loop, error) {
	if err := backend.Create(setsize); err != nil {
		return nil, errors.Wrap(err, "eventloop: creating backend")
	}
	return &Loop{backend: backend, events: make(map[int]*fileEvent)}, nil
}

// AddFileEvent registers handler for fd's mask conditions. invert reverses
// the firing order to Write-then-Read for this fd (used by connections
// that need to flush pending output before accepting more input).
func (l *Loop) AddFileEvent(fd int, mask EventType, handler Handler, invert bool) error {
	fe, ok := l.events[fd]
	if !ok {
		fe = &fileEvent{}
		l.events[fd] = fe
	}
	if mask&Read != 0 {
		fe.readHandler = handler
	}
	if mask&Write != 0 {
		fe.writeHandler = handler
	}
	fe.sameHandler = fe.readHandler != nil && fe.writeHandler != nil &&
		reflect.ValueOf(fe.readHandler).Pointer() == reflect.ValueOf(fe.writeHandler).Pointer()
	fe.invert = invert
	fe.mask |= mask
	return l.backend.AddEvent(fd, mask)
}

// DelFileEvent unregisters mask's conditions for fd, removing fd entirely
// once no conditions remain.
func (l *Loop) DelFileEvent(fd int, mask EventType) error {
	fe, ok := l.events[fd]
	if !ok {
		return nil
	}
	if mask&Read != 0 {
		fe.readHandler = nil
	}
	if mask&Write != 0 {
		fe.writeHandler = nil
	}
	fe.mask &^= mask
	if fe.mask == 0 {
		delete(l.events, fd)
	}
	return l.backend.DelEvent(fd, mask)
}

// Stop requests that Await return after the current Poll cycle.
func (l *Loop) Stop() { l.stop = true }

// Await blocks, repeatedly polling the backend and firing handlers, until
// Stop is called.
func (l *Loop) Await() error {
	for !l.stop {
		fired, err := l.backend.Poll(100)
		if err != nil {
			return errors.Wrap(err, "eventloop: poll")
		}
		l.fireEvents(fired)
	}
	return nil
}

// fireEvents dispatches one Poll cycle's results, preserving de.c's
// fire_events ordering: Read before Write normally, Write before Read when
// the fd's registration requested Invert (so a connection can flush
// pending writes before any more input is read from it), and a handler
// shared by both conditions fires only once per cycle.
func (l *Loop) fireEvents(fired []FiredEvent) {
	for _, f := range fired {
		fe, ok := l.events[f.FD]
		if !ok {
			continue
		}
		fired := false
		if !fe.invert && f.Mask&Read != 0 && fe.readHandler != nil {
			fe.readHandler(f.FD)
			fired = true
		}
		if f.Mask&Write != 0 && fe.writeHandler != nil {
			if !fired || !fe.sameHandler {
				fe.writeHandler(f.FD)
				fired = true
			}
		}
		if fe.invert && f.Mask&Read != 0 && fe.readHandler != nil {
			if !fired || !fe.sameHandler {
				fe.readHandler(f.FD)
			}
		}
	}
}

// Close releases the underlying backend.
func (l *Loop) Close() error { return l.backend.Close() }
