//go:build unix

package core

import (
	"errors"
	"syscall"

	srverrors "github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/errors"
	"golang.org/x/sys/unix"
)

// socketControl sets SO_REUSEADDR explicitly. The runtime enables it by
// default; turning it off makes a port in TIME_WAIT fail to bind.
func socketControl(reuseAddr bool) func(network, address string, c syscall.RawConn) error {
	value := 0
	if reuseAddr {
		value = 1
	}
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, value)
		})
		if err == nil {
			err = sockErr
		}
		if err != nil {
			return srverrors.New(srverrors.SocketFailure, "setsockopt SO_REUSEADDR", err)
		}
		return nil
	}
}

func isBindErrno(err error) bool {
	return errors.Is(err, unix.EADDRINUSE) ||
		errors.Is(err, unix.EADDRNOTAVAIL) ||
		errors.Is(err, unix.EACCES) ||
		errors.Is(err, unix.EINVAL)
}
