package core

import (
	"context"
	"io"
	"net"
)

// ConnectionHandler owns one accepted connection for its whole lifetime,
// including closing it.
type ConnectionHandler interface {
	HandleConnection(conn net.Conn)
}

// Processor acts on the bytes delivered by a single read. Each call receives
// one chunk; chunks are not reassembled into messages.
type Processor interface {
	Process(ctx context.Context, w io.Writer, chunk []byte) error
}
