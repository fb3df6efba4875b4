package handler

import (
	"context"
	"io"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/request"
)

// EchoProcessor writes every chunk back unchanged.
type EchoProcessor struct{}

func (EchoProcessor) Process(_ context.Context, w io.Writer, chunk []byte) error {
	_, err := w.Write(chunk)
	return err
}

// InspectProcessor parses each chunk as one request, logs the result and
// passes the chunk on to Next (echo when nil).
type InspectProcessor struct {
	Next core.Processor
}

func (p InspectProcessor) Process(ctx context.Context, w io.Writer, chunk []byte) error {
	log := logger.FromContext(ctx)

	req := request.Parse(chunk)
	if !req.Valid {
		log.Warn("Malformed request line", "bytes", len(chunk))
	} else {
		log.Info("Request parsed",
			"method", req.Method,
			"document", req.Document,
			"query", req.Query,
			"version", req.Version,
			"host", req.Host,
			"user_agent", req.UserAgent,
			"headers", len(req.Headers),
			"body_bytes", len(req.Body))
	}

	next := p.Next
	if next == nil {
		next = EchoProcessor{}
	}
	return next.Process(ctx, w, chunk)
}
