package factory

import (
	"fmt"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/config"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/handler"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
)

// HandlerFactory creates connection handlers
type HandlerFactory struct {
	cfg *config.Config
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(cfg *config.Config) *HandlerFactory {
	return &HandlerFactory{cfg: cfg}
}

// Create creates a connection handler based on the handler mode
func (f *HandlerFactory) Create() (core.ConnectionHandler, error) {
	processor, err := f.createProcessor()
	if err != nil {
		return nil, err
	}

	logger.Info("Creating connection handler",
		"mode", f.cfg.Mode,
		"read_buffer_size", f.cfg.ReadBufferSize,
		"reverse_lookup", f.cfg.ReverseLookup)

	return &handler.Handler{
		BufferSize:    f.cfg.ReadBufferSize,
		ReverseLookup: f.cfg.ReverseLookup,
		LookupTimeout: f.cfg.LookupTimeout,
		Processor:     processor,
	}, nil
}

func (f *HandlerFactory) createProcessor() (core.Processor, error) {
	switch f.cfg.Mode {
	case config.ModeEcho:
		return handler.EchoProcessor{}, nil
	case config.ModeInspect:
		return handler.InspectProcessor{Next: handler.EchoProcessor{}}, nil
	default:
		return nil, fmt.Errorf("unknown handler mode: %s", f.cfg.Mode)
	}
}
