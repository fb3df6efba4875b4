package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
)

// HealthServer exposes liveness and readiness of the request server.
type HealthServer struct {
	server     *http.Server
	listenAddr atomic.Pointer[string] // nil until the request listener is bound
}

func NewHealthServer(addr string) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /ready", hs.handleReady)

	return hs
}

func (s *HealthServer) Start() {
	go func() {
		logger.Info("Health server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()
}

func (s *HealthServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// MarkReady records the address the request listener is bound to.
func (s *HealthServer) MarkReady(listenAddr string) {
	s.listenAddr.Store(&listenAddr)
}

// MarkNotReady makes /ready fail, e.g. during shutdown.
func (s *HealthServer) MarkNotReady() {
	s.listenAddr.Store(nil)
}

func (s *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if addr := s.listenAddr.Load(); addr != nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready " + *addr))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	}
}
