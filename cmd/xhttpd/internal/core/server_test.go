package core_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/handler"
)

type handlerFunc func(net.Conn)

func (f handlerFunc) HandleConnection(conn net.Conn) { f(conn) }

// scriptedListener hands out a fixed sequence of Accept results and then
// reports itself closed.
type scriptedListener struct {
	mu      sync.Mutex
	results []acceptResult
}

type acceptResult struct {
	conn net.Conn
	err  error
}

func (l *scriptedListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.results) == 0 {
		return nil, net.ErrClosed
	}
	r := l.results[0]
	l.results = l.results[1:]
	return r.conn, r.err
}

func (l *scriptedListener) Close() error   { return nil }
func (l *scriptedListener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func startServer(t *testing.T, h core.ConnectionHandler) (string, func()) {
	t.Helper()

	l, err := core.Listen(context.Background(), core.ListenOptions{Address: "127.0.0.1", Port: 0, ReuseAddr: true})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	srv := &core.Server{Listener: l, ConnectionHandler: h}
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	stop := func() {
		l.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after listener close")
		}
	}
	return l.Addr().String(), stop
}

func TestServer_ConcurrentConnectionsAreIsolated(t *testing.T) {
	h := &handler.Handler{BufferSize: 4096, Processor: handler.EchoProcessor{}}
	addr, stop := startServer(t, h)
	defer stop()

	const clients = 2
	var wg sync.WaitGroup
	errs := make(chan error, clients)

	conns := make([]net.Conn, clients)
	for i := range conns {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("Dial failed: %v", err)
		}
		defer c.Close()
		conns[i] = c
	}

	for i, c := range conns {
		wg.Add(1)
		go func(id int, c net.Conn) {
			defer wg.Done()
			for round := 0; round < 5; round++ {
				msg := []byte(fmt.Sprintf("client-%d-round-%d", id, round))
				if _, err := c.Write(msg); err != nil {
					errs <- err
					return
				}
				c.SetReadDeadline(time.Now().Add(2 * time.Second))
				got := make([]byte, len(msg))
				if _, err := io.ReadFull(c, got); err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(got, msg) {
					errs <- fmt.Errorf("client %d got %q, want %q", id, got, msg)
					return
				}
			}
		}(i, c)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestServer_SlowConnectionDoesNotBlockAccept(t *testing.T) {
	h := &handler.Handler{BufferSize: 4096, Processor: handler.EchoProcessor{}}
	addr, stop := startServer(t, h)
	defer stop()

	// Connected but silent: its handler blocks in Read indefinitely.
	idle, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer idle.Close()

	active, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer active.Close()

	if _, err := active.Write([]byte("ping")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	active.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, 4)
	if _, err := io.ReadFull(active, got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "ping" {
		t.Errorf("got %q, want ping", got)
	}
}

func TestServer_ContinuesAfterAcceptError(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	l := &scriptedListener{results: []acceptResult{
		{err: errors.New("accept: too many open files")},
		{conn: server},
	}}

	handled := make(chan net.Conn, 1)
	srv := &core.Server{Listener: l, ConnectionHandler: handlerFunc(func(c net.Conn) {
		handled <- c
		c.Close()
	})}

	if err := srv.Serve(); err != nil {
		t.Fatalf("Serve returned %v, want nil", err)
	}

	select {
	case c := <-handled:
		if c != server {
			t.Error("handler received an unexpected connection")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("connection accepted after the failure was never handled")
	}
}

func TestServer_HandlerPanicIsContained(t *testing.T) {
	s1, c1 := net.Pipe()
	s2, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	l := &scriptedListener{results: []acceptResult{{conn: s1}, {conn: s2}}}

	handled := make(chan net.Conn, 2)
	srv := &core.Server{Listener: l, ConnectionHandler: handlerFunc(func(c net.Conn) {
		defer c.Close()
		if c == s1 {
			panic("boom")
		}
		handled <- c
	})}

	if err := srv.Serve(); err != nil {
		t.Fatalf("Serve returned %v, want nil", err)
	}

	select {
	case c := <-handled:
		if c != s2 {
			t.Error("expected the second connection to be handled")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second connection was not handled")
	}
}
