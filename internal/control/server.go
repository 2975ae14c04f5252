// Package control serves a WebSocket control surface for a running
// compressor. Each connection reads and writes the lock-free parameter
// store directly from its own goroutine and can poll the gain reduction
// meters.
//
// Messages are JSON text frames:
//
//	{"type":"set","param":"threshold","value":-18}
//	{"type":"set","param":"ratio","label":"4:1"}
//	{"type":"get"}
//	{"type":"describe"}
//	{"type":"ping","ts":123}
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cwbudde/algo-comp/dsp/params"
)

const (
	readTimeout     = 60 * time.Second
	shutdownTimeout = 5 * time.Second
	bufferSize      = 4096
)

// Meter reports per-channel gain reduction of the running engine.
type Meter interface {
	NumChannels() int
	GainReductionDB(ch int) float64
}

// Server is the control-surface endpoint.
type Server struct {
	store    *params.Store
	meter    Meter
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer returns a server bound to store. meter may be nil.
func NewServer(store *params.Store, meter Meter) *Server {
	return &Server{
		store: store,
		meter: meter,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  bufferSize,
			WriteBufferSize: bufferSize,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler routes /healthz and /ws/params.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	mux.HandleFunc("/ws/params", s.HandleParams)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts the
// HTTP server down and closes open control connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("control surface listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	log.Info().Msg("control surface stopped")

	return err
}

// HandleParams upgrades the request and serves control messages until the
// peer disconnects.
func (s *Server) HandleParams(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade failed")
		return
	}

	s.track(conn)
	defer s.untrack(conn)

	log.Debug().Str("remote", r.RemoteAddr).Msg("control client connected")

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("control read ended")
			}
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		if mt != websocket.TextMessage {
			continue
		}

		if err := conn.WriteJSON(s.handle(data)); err != nil {
			log.Warn().Err(err).Msg("control write failed")
			return
		}
	}
}

func (s *Server) track(c *websocket.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	_ = c.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
}
