package lexiserver

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// createListener opens, binds and listens on a non-blocking IPv4 TCP
// socket, grounded on networking.c's create_tcp_socket/tcp_bind/tcp_listen
// trio, built on golang.org/x/sys/unix instead of cgo. Address parsing
// uses net.ParseIP rather than networking.c's hand-rolled parse_addr,
// since correctness matters more here than matching that helper's texture.
func createListener(bindAddr string, port uint16, backlog int) (int, error) {
	ip := net.ParseIP(bindAddr)
	if ip == nil {
		return -1, fmt.Errorf("lexiserver: invalid bind address %q", bindAddr)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return -1, fmt.Errorf("lexiserver: bind address %q is not IPv4", bindAddr)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return -1, errors.Wrap(err, "lexiserver: socket")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, errors.Wrap(err, "lexiserver: setsockopt SO_REUSEADDR")
	}

	var sa unix.SockaddrInet4
	sa.Port = int(port)
	copy(sa.Addr[:], ip4)

	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return -1, errors.Wrapf(err, "lexiserver: bind %s:%d", bindAddr, port)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, errors.Wrap(err, "lexiserver: listen")
	}
	return fd, nil
}
