package factory

import (
	"context"
	"net"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/config"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
)

// ListenerFactory creates the listening socket
type ListenerFactory struct {
	cfg *config.Config
}

// NewListenerFactory creates a new listener factory
func NewListenerFactory(cfg *config.Config) *ListenerFactory {
	return &ListenerFactory{cfg: cfg}
}

// Create binds the configured address. Errors are SocketFailure or
// BindFailure and are not retried.
func (f *ListenerFactory) Create(ctx context.Context) (net.Listener, error) {
	l, err := core.Listen(ctx, core.ListenOptions{
		Address:        f.cfg.BindAddress,
		Port:           f.cfg.Port,
		ReuseAddr:      f.cfg.ReuseAddr,
		MaxConnections: f.cfg.MaxConnections,
	})
	if err != nil {
		return nil, err
	}

	if f.cfg.MaxConnections > 0 {
		logger.Info("Connection limit enabled", "max_connections", f.cfg.MaxConnections)
	} else {
		logger.Warn("No connection limit - every accepted connection gets its own goroutine")
	}
	logger.Info("Listener bound", "addr", l.Addr().String(), "backlog", core.Backlog())
	return l, nil
}
