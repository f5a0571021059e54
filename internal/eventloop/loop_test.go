package eventloop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBackend lets loop_test drive fireEvents directly without depending on
// a real epoll/select syscall, which isn't exercised in unit tests.
type fakeBackend struct {
	added   []FiredEvent
	polls   [][]FiredEvent
	pollIdx int
}

func (f *fakeBackend) Create(int) error                     { return nil }
func (f *fakeBackend) AddEvent(fd int, mask EventType) error { return nil }
func (f *fakeBackend) DelEvent(fd int, mask EventType) error { return nil }
func (f *fakeBackend) Close() error                          { return nil }
func (f *fakeBackend) Name() string                          { return "fake" }
func (f *fakeBackend) Poll(int) ([]FiredEvent, error) {
	if f.pollIdx >= len(f.polls) {
		return nil, nil
	}
	out := f.polls[f.pollIdx]
	f.pollIdx++
	return out, nil
}

func TestFireEventsReadBeforeWriteByDefault(t *testing.T) {
	l, err := New(&fakeBackend{}, 16)
	require.NoError(t, err)
	var order []string
	l.AddFileEvent(1, Read, func(int) { order = append(order, "read") }, false)
	l.AddFileEvent(1, Write, func(int) { order = append(order, "write") }, false)
	l.fireEvents([]FiredEvent{{FD: 1, Mask: Read | Write}})
	require.Equal(t, []string{"read", "write"}, order)
}

func TestFireEventsInvertedOrdersWriteFirst(t *testing.T) {
	l, err := New(&fakeBackend{}, 16)
	require.NoError(t, err)
	var order []string
	l.AddFileEvent(1, Read, func(int) { order = append(order, "read") }, true)
	l.AddFileEvent(1, Write, func(int) { order = append(order, "write") }, true)
	l.fireEvents([]FiredEvent{{FD: 1, Mask: Read | Write}})
	require.Equal(t, []string{"write", "read"}, order)
}

func TestFireEventsSharedHandlerFiresOnce(t *testing.T) {
	l, err := New(&fakeBackend{}, 16)
	require.NoError(t, err)
	calls := 0
	shared := func(int) { calls++ }
	l.AddFileEvent(1, Read, shared, false)
	l.AddFileEvent(1, Write, shared, false)
	l.fireEvents([]FiredEvent{{FD: 1, Mask: Read | Write}})
	require.Equal(t, 1, calls)
}

func TestDelFileEventRemovesHandler(t *testing.T) {
	l, err := New(&fakeBackend{}, 16)
	require.NoError(t, err)
	calls := 0
	l.AddFileEvent(1, Read, func(int) { calls++ }, false)
	require.NoError(t, l.DelFileEvent(1, Read))
	l.fireEvents([]FiredEvent{{FD: 1, Mask: Read}})
	require.Equal(t, 0, calls)
}

func TestAwaitStopsCleanly(t *testing.T) {
	l, err := New(&fakeBackend{}, 16)
	require.NoError(t, err)
	l.Stop()
	require.NoError(t, l.Await())
}
