package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	srverrors "github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/errors"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
)

const (
	DefaultBufferSize    = 4096
	DefaultLookupTimeout = 2 * time.Second
)

// State is a position in the connection lifecycle.
type State int

const (
	Connected State = iota
	Reading
	Disconnected
	Errored
)

func (s State) String() string {
	switch s {
	case Connected:
		return "CONNECTED"
	case Reading:
		return "READING"
	case Disconnected:
		return "DISCONNECTED"
	case Errored:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Handler implements core.ConnectionHandler. A single Handler is shared by
// all connections; it holds configuration only, all per-connection state
// lives in Serve.
type Handler struct {
	BufferSize    int
	ReverseLookup bool
	LookupTimeout time.Duration
	Processor     core.Processor
	Resolver      *net.Resolver // nil means net.DefaultResolver
}

// HandleConnection implements core.ConnectionHandler.
func (h *Handler) HandleConnection(conn net.Conn) {
	h.Serve(conn)
}

// Serve runs the read loop on conn until the peer disconnects or an error
// occurs, and returns the terminal state. conn is closed exactly once.
//
// Each read is handed to the Processor as it arrives. Reads are not framed:
// a request split across reads, or two requests in one read, are passed on
// as-is.
func (h *Handler) Serve(conn net.Conn) State {
	defer conn.Close()

	log := logger.With("conn_id", uuid.NewString(), "remote_addr", conn.RemoteAddr().String())
	host, port := h.resolvePeer(conn.RemoteAddr())
	log = log.With("host", host)
	log.Info("Client connected", "port", port)

	ctx := logger.NewContext(context.Background(), log)
	buf := make([]byte, h.bufferSize())

	state := Reading
	for state == Reading {
		state = h.readOnce(ctx, log, conn, buf)
	}
	return state
}

func (h *Handler) readOnce(ctx context.Context, log *slog.Logger, conn net.Conn, buf []byte) State {
	n, err := conn.Read(buf)
	if n > 0 {
		log.Debug("Received", "bytes", n, "data", string(buf[:n]))
		if perr := h.processor().Process(ctx, conn, buf[:n]); perr != nil {
			log.Error("Connection error", "error", srverrors.New(srverrors.ConnectionFailure, "process", perr))
			return Errored
		}
	}
	if err == nil {
		return Reading
	}
	if errors.Is(err, io.EOF) {
		log.Info("Client disconnected")
		return Disconnected
	}
	log.Error("Connection error", "error", srverrors.New(srverrors.ConnectionFailure, "read", err))
	return Errored
}

// resolvePeer returns the peer's host name, falling back to the numeric
// address, and its port.
func (h *Handler) resolvePeer(addr net.Addr) (host, port string) {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), ""
	}
	if !h.ReverseLookup {
		return host, port
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout())
	defer cancel()

	names, err := h.resolver().LookupAddr(ctx, host)
	if err != nil || len(names) == 0 {
		return host, port
	}
	return strings.TrimSuffix(names[0], "."), port
}

func (h *Handler) bufferSize() int {
	if h.BufferSize > 0 {
		return h.BufferSize
	}
	return DefaultBufferSize
}

func (h *Handler) lookupTimeout() time.Duration {
	if h.LookupTimeout > 0 {
		return h.LookupTimeout
	}
	return DefaultLookupTimeout
}

func (h *Handler) processor() core.Processor {
	if h.Processor != nil {
		return h.Processor
	}
	return EchoProcessor{}
}

func (h *Handler) resolver() *net.Resolver {
	if h.Resolver != nil {
		return h.Resolver
	}
	return net.DefaultResolver
}
