// SPDX-License-Identifier: GPL-2.0-or-later

// Package transport is the concrete frame stream the rest of the server
// talks through: a single-client websocket listener bridging the
// state machine's gatekeeper.Receiver/Sender channel pair to the wire,
// pacing outbound updates through a latest-wins rate limiter.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gcast/pkg/gatekeeper"
	"gcast/pkg/log"
	"gcast/pkg/protocol"
)

// Handle serves one accepted connection's channel pair. It returns once
// the connection should be torn down, e.g. when the state machine exits.
type Handle func(ctx context.Context, from gatekeeper.Receiver, to gatekeeper.Sender) error

// Server accepts exactly one websocket client at a time: gcast is a
// single-user appliance, so a second connection attempt while one is
// already being served is rejected rather than queued.
type Server struct {
	addr string
	log  *log.Logger

	upgrader websocket.Upgrader

	mu   sync.Mutex
	busy bool
}

// NewServer returns a Server that will listen on addr.
func NewServer(addr string, logger *log.Logger) *Server {
	return &Server{addr: addr, log: logger}
}

// ListenAndServe serves handle for each accepted connection until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, handle Handle) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.handler(handle))

	httpServer := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("transport: shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("transport: %w", err)
		}
		return nil
	}
}

func (s *Server) handler(handle Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.acquire() {
			http.Error(w, "gcast: a remote is already connected", http.StatusServiceUnavailable)
			return
		}
		defer s.release()

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.warnf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		s.serve(r.Context(), conn, handle)
	})
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// serve bridges conn to handle: a read loop decodes inbound frames onto
// from, handle's own outbound Sends are paced through a Limiter and
// written back out, and everything unwinds once handle returns or the
// connection drops.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, handle Handle) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	from := make(chan protocol.Message)
	to := make(chan protocol.Message)
	limiter := NewLimiter()

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.readLoop(ctx, cancel, conn, from)
	}()

	go func() {
		defer wg.Done()
		pumpToLimiter(ctx, to, limiter)
	}()

	go func() {
		defer wg.Done()
		if err := limiter.Run(ctx, func(m protocol.Message) error {
			return s.writeMessage(conn, m)
		}); err != nil && ctx.Err() == nil {
			s.infof("outbound loop stopped: %v", err)
		}
	}()

	if err := handle(ctx, from, to); err != nil {
		s.warnf("connection handler returned: %v", err)
	}

	cancel()
	wg.Wait()
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, from chan<- protocol.Message) {
	defer cancel()
	defer close(from)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.infof("remote disconnected: %v", err)
			return
		}

		msg, err := protocol.Decode(bytes.NewReader(data))
		if err != nil {
			s.warnf("dropping malformed frame: %v", err)
			continue
		}

		select {
		case from <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) writeMessage(conn *websocket.Conn, m protocol.Message) error {
	var buf bytes.Buffer
	if err := protocol.Encode(&buf, m); err != nil {
		return fmt.Errorf("transport: encoding outbound frame: %w", err)
	}
	return conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

// pumpToLimiter forwards every message handed to the state machine's
// Sender onto the limiter's mailbox, so bursts of updates coalesce down
// to the latest before they ever reach the wire.
func pumpToLimiter(ctx context.Context, to <-chan protocol.Message, limiter *Limiter) {
	for {
		select {
		case m, ok := <-to:
			if !ok {
				return
			}
			limiter.Send(m)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) infof(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Info().Src("transport").Msgf(format, args...)
}

func (s *Server) warnf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Warn().Src("transport").Msgf(format, args...)
}
