package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	srverrors "github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/errors"
	"golang.org/x/net/netutil"
	netutils "k8s.io/utils/net"
)

// ListenOptions describes the listening endpoint.
type ListenOptions struct {
	Address        string // IPv4 dotted-quad
	Port           int    // 0 picks an ephemeral port
	ReuseAddr      bool
	MaxConnections int // 0 means unlimited
}

// Listen creates, binds and starts listening on a TCP socket. The backlog is
// left to the runtime, which uses the platform maximum.
//
// Failures are *srverrors.Error values of kind SocketFailure or BindFailure.
func Listen(ctx context.Context, opts ListenOptions) (net.Listener, error) {
	ip := netutils.ParseIPSloppy(opts.Address)
	if ip == nil || ip.To4() == nil {
		return nil, srverrors.New(srverrors.BindFailure, "parse address",
			fmt.Errorf("invalid IPv4 address %q", opts.Address))
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, srverrors.New(srverrors.BindFailure, "parse port",
			fmt.Errorf("port %d out of range", opts.Port))
	}

	addr := net.JoinHostPort(ip.To4().String(), strconv.Itoa(opts.Port))
	lc := net.ListenConfig{Control: socketControl(opts.ReuseAddr)}

	l, err := lc.Listen(ctx, "tcp4", addr)
	if err != nil {
		return nil, classifyListenError(addr, err)
	}

	if opts.MaxConnections > 0 {
		l = netutil.LimitListener(l, opts.MaxConnections)
	}
	return l, nil
}

func classifyListenError(addr string, err error) error {
	if _, ok := srverrors.KindOf(err); ok {
		return err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "listen" && isBindErrno(err) {
		return srverrors.New(srverrors.BindFailure, "listen "+addr, err)
	}
	return srverrors.New(srverrors.SocketFailure, "listen "+addr, err)
}
