// Package lexiserver wires the keyspace databases, command dispatch,
// wire codec and event loop into a running server, grounded on server.c's
// server_init/server_configure/server_init_databases/server_run/
// server_free phase split. Unlike server.c's file-scope global
// `lexi_server server`, this is an explicit value: every dependency is a
// field on *Server, constructed once in New and never reached through a
// package-level variable.
package lexiserver

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lexidb/lexid/internal/acl"
	"github.com/lexidb/lexid/internal/command"
	"github.com/lexidb/lexid/internal/config"
	"github.com/lexidb/lexid/internal/database"
	"github.com/lexidb/lexid/internal/eventloop"
	"github.com/lexidb/lexid/internal/object"
	"github.com/lexidb/lexid/internal/protocol"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Version is the server's reported build version, surfaced through INFO.
const Version = "0.1.0"

// maxClients bounds the event loop's backend sizing, matching server.c's
// server.max_clients.
const maxClients = 10000

// readBufferSize is how much is read from a socket per readHandler call.
const readBufferSize = 64 * 1024

// Server is the fully constructed, runnable keyspace server.
type Server struct {
	cfg    *config.Config
	log    *zap.Logger
	loop   *eventloop.Loop
	ctx    *command.Context
	listen int

	sessions map[int]*command.Session
	conns    map[int]*eventloop.Connection
}

// New constructs a Server from cfg, ready to Run.
func New(cfg *config.Config, log *zap.Logger) *Server {
	dbs := make([]*database.Database, cfg.Databases)
	for i := range dbs {
		dbs[i] = database.New(i)
	}
	users := make(map[string]*acl.User, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Name] = u
	}
	return &Server{
		cfg: cfg,
		log: log,
		ctx: &command.Context{
			Databases:     dbs,
			Users:         users,
			ProtectedMode: cfg.ProtectedMode,
			Version:       Version,
		},
		sessions: make(map[int]*command.Session),
		conns:    make(map[int]*eventloop.Connection),
		listen:   -1,
	}
}

// Run binds the listener, starts the event loop, and blocks until a
// SIGINT/SIGTERM is received or the loop is otherwise stopped.
func (s *Server) Run() error {
	fd, err := createListener(s.cfg.BindAddr, s.cfg.Port, s.cfg.TCPBacklog)
	if err != nil {
		return errors.Wrap(err, "lexiserver: binding listener")
	}
	s.listen = fd

	loop, err := eventloop.New(eventloop.NewDefaultBackend(), maxClients)
	if err != nil {
		unix.Close(fd)
		return errors.Wrap(err, "lexiserver: creating event loop")
	}
	s.loop = loop

	if err := s.loop.AddFileEvent(fd, eventloop.Read, s.acceptHandler, false); err != nil {
		s.Close()
		return errors.Wrap(err, "lexiserver: registering listener")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		s.log.Info("received shutdown signal")
		s.loop.Stop()
	}()

	s.log.Info("server listening",
		zap.String("addr", s.cfg.BindAddr),
		zap.Uint16("port", s.cfg.Port),
		zap.Int("databases", s.cfg.Databases),
	)

	if err := s.loop.Await(); err != nil {
		s.Close()
		return errors.Wrap(err, "lexiserver: event loop")
	}
	return s.Close()
}

// Close releases every resource Run acquired.
func (s *Server) Close() error {
	for fd := range s.conns {
		unix.Close(fd)
	}
	if s.loop != nil {
		s.loop.Close()
	}
	if s.listen != -1 {
		unix.Close(s.listen)
		s.listen = -1
	}
	return nil
}

// acceptHandler drains the listener's backlog until EAGAIN, the
// accept-loop-until-EAGAIN edge case spec.md §4.5 calls out, grounded on
// de.c's accept-driving read handler.
func (s *Server) acceptHandler(listenFD int) {
	for {
		connFD, _, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK)
		if err != nil {
			if err != unix.EAGAIN {
				s.log.Warn("accept failed", zap.Error(err))
			}
			return
		}
		s.conns[connFD] = eventloop.NewConnection(connFD)
		s.sessions[connFD] = &command.Session{}
		if err := s.loop.AddFileEvent(connFD, eventloop.Read, s.readHandler, false); err != nil {
			s.log.Warn("registering connection failed", zap.Error(err))
			s.closeConnection(connFD)
		}
	}
}

func (s *Server) readHandler(fd int) {
	conn, ok := s.conns[fd]
	if !ok {
		return
	}
	buf := make([]byte, readBufferSize)
	n, err := unix.Read(fd, buf)
	if n > 0 {
		conn.AppendInbound(buf[:n])
	}
	if err != nil && err != unix.EAGAIN {
		s.closeConnection(fd)
		return
	}
	if n == 0 && err == nil {
		s.closeConnection(fd)
		return
	}

	s.drainFrames(fd, conn)
}

// drainFrames decodes every complete frame currently buffered, dispatches
// it, and encodes the reply, leaving any trailing partial frame in
// conn.Inbound for the next read.
func (s *Server) drainFrames(fd int, conn *eventloop.Connection) {
	sess := s.sessions[fd]
	for {
		obj, consumed, err := protocol.Decode(conn.Inbound)
		if err == protocol.ErrNeedMore {
			s.registerWriteInterestIfPending(fd, conn)
			return
		}
		if err != nil {
			s.log.Debug("protocol error, closing connection", zap.Int("fd", fd), zap.Error(err))
			s.closeConnection(fd)
			return
		}
		conn.ConsumeInbound(consumed)

		var reply object.Object
		if obj.Kind() != object.Array {
			reply = object.NewError("EINVCMD")
		} else {
			reply = command.Dispatch(s.ctx, sess, obj.Elements())
		}

		enc := protocol.NewEncoder(64)
		enc.Encode(reply)
		conn.QueueOutbound(enc.Bytes())
	}
}

// registerWriteInterestIfPending arms the Write handler once a reply has
// been queued, so flushWrites gets driven by the event loop instead of
// being called inline from drainFrames.
func (s *Server) registerWriteInterestIfPending(fd int, conn *eventloop.Connection) {
	if !conn.HasPendingWrite() {
		return
	}
	if err := s.loop.AddFileEvent(fd, eventloop.Write, s.flushWrites, false); err != nil {
		s.log.Warn("registering write interest failed", zap.Int("fd", fd), zap.Error(err))
	}
}

// flushWrites is registered as the Write handler for any connection with
// pending output; it drops Write interest again once the buffer drains.
func (s *Server) flushWrites(fd int) {
	conn, ok := s.conns[fd]
	if !ok || !conn.HasPendingWrite() {
		return
	}
	n, err := unix.Write(fd, conn.Outbound)
	if n > 0 {
		conn.ConsumeOutbound(n)
	}
	if err != nil && err != unix.EAGAIN {
		s.closeConnection(fd)
		return
	}
	if !conn.HasPendingWrite() {
		s.loop.DelFileEvent(fd, eventloop.Write)
	}
}

func (s *Server) closeConnection(fd int) {
	s.loop.DelFileEvent(fd, eventloop.Read|eventloop.Write)
	unix.Close(fd)
	delete(s.conns, fd)
	delete(s.sessions, fd)
}
