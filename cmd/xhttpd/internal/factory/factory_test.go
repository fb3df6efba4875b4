package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/config"
	srverrors "github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/errors"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/handler"
)

func TestHandlerFactory_Create(t *testing.T) {
	tests := []struct {
		mode    config.Mode
		inspect bool
	}{
		{config.ModeEcho, false},
		{config.ModeInspect, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := config.Default()
			cfg.Mode = tt.mode
			cfg.ReadBufferSize = 512

			ch, err := NewHandlerFactory(cfg).Create()
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			h, ok := ch.(*handler.Handler)
			if !ok {
				t.Fatalf("Create returned %T, want *handler.Handler", ch)
			}
			if h.BufferSize != 512 || !h.ReverseLookup || h.LookupTimeout != cfg.LookupTimeout {
				t.Errorf("handler not configured from config: %+v", h)
			}
			_, isInspect := h.Processor.(handler.InspectProcessor)
			if isInspect != tt.inspect {
				t.Errorf("processor = %T, inspect = %v", h.Processor, tt.inspect)
			}
		})
	}
}

func TestHandlerFactory_UnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "proxy"
	if _, err := NewHandlerFactory(cfg).Create(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestListenerFactory_Create(t *testing.T) {
	cfg := config.Default()
	cfg.BindAddress = "127.0.0.1"
	cfg.Port = 0

	l, err := NewListenerFactory(cfg).Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	l.Close()

	cfg.BindAddress = "not-an-address"
	if _, err := NewListenerFactory(cfg).Create(context.Background()); !errors.Is(err, srverrors.BindFailure) {
		t.Errorf("error = %v, want BindFailure", err)
	}
}
