package core

import (
	"errors"
	"net"
	"time"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
	"k8s.io/apimachinery/pkg/util/wait"
)

// Server is the accept loop. It depends only on interfaces.
//
// Every accepted connection is handed to its own goroutine and the loop goes
// straight back to Accept. There is no limit on concurrent handlers unless the
// Listener itself enforces one.
type Server struct {
	Listener          net.Listener
	ConnectionHandler ConnectionHandler
}

// Serve accepts connections until the listener is closed, then returns nil.
// Other accept failures are logged and retried after a short backoff.
func (s *Server) Serve() error {
	backoff := acceptBackoff()
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			delay := backoff.Step()
			logger.Warn("Accept failed", "error", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		backoff = acceptBackoff()
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(clientConn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Connection handler panicked", "remote_addr", clientConn.RemoteAddr(), "panic", r)
		}
	}()
	// Delegate the entire lifecycle to the handler
	s.ConnectionHandler.HandleConnection(clientConn)
}

func acceptBackoff() wait.Backoff {
	return wait.Backoff{
		Duration: 5 * time.Millisecond,
		Factor:   2,
		Steps:    10,
		Cap:      time.Second,
	}
}
