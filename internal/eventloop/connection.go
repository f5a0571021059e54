package eventloop

// ConnState is a connection's position in its accept/read/write/close
// lifecycle.
type ConnState uint8

const (
	Accepting ConnState = iota
	Reading
	Writing
	Closing
)

func (s ConnState) String() string {
	switch s {
	case Accepting:
		return "accepting"
	case Reading:
		return "reading"
	case Writing:
		return "writing"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Connection tracks one client socket's buffers and lifecycle state. The
// event loop itself is state-machine agnostic. NewConnection starts a
// Connection in Reading; internal/lexiserver drives reads and writes
// through the loop's Read/Write registrations and does not change State
// after that.
type Connection struct {
	FD    int
	State ConnState

	// Inbound holds bytes read but not yet decoded into a complete frame.
	Inbound []byte
	// Outbound holds encoded reply bytes not yet flushed to the socket.
	Outbound []byte
}

// NewConnection wraps an accepted client fd.
func NewConnection(fd int) *Connection {
	return &Connection{FD: fd, State: Reading}
}

// HasPendingWrite reports whether there is unflushed output, the signal
// lexiserver uses to decide whether this connection's fd needs Write
// interest registered at all.
func (c *Connection) HasPendingWrite() bool { return len(c.Outbound) > 0 }

// QueueOutbound appends bytes to the connection's write buffer.
func (c *Connection) QueueOutbound(b []byte) {
	c.Outbound = append(c.Outbound, b...)
}

// ConsumeOutbound drops the first n bytes of the write buffer after they
// have been successfully written to the socket.
func (c *Connection) ConsumeOutbound(n int) {
	c.Outbound = c.Outbound[n:]
}

// ConsumeInbound drops the first n bytes of the read buffer after they
// have been decoded into a frame.
func (c *Connection) ConsumeInbound(n int) {
	c.Inbound = c.Inbound[n:]
}

// AppendInbound appends freshly read bytes to the read buffer.
func (c *Connection) AppendInbound(b []byte) {
	c.Inbound = append(c.Inbound, b...)
}
