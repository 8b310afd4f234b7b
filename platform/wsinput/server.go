// SPDX-License-Identifier: Unlicense OR MIT

/*
Package wsinput serves gesture recognition over websockets.

Each connection drives one gesture.Engine configured for the element
named by the "element" query parameter. Clients send touch-event
messages of the form {id, x, y, pressure}, where a zero pressure ends
the contact, and wheel-event messages. Every gesture result is sent
back as a gesture message; capture and release messages tell the
client when the element claims the pointer.
*/
package wsinput

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gioui.org/touch/config"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/taplock"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server is an http.Handler accepting gesture websocket connections.
type Server struct {
	log     *zap.SugaredLogger
	limiter *taplock.Limiter

	mu      sync.Mutex
	cfg     *config.Config
	conns   map[*conn]struct{}
	record  func(element string, s pointer.Sample)
	closing bool
}

// NewServer returns a Server using cfg for new connections. A nil cfg
// selects the defaults.
func NewServer(log *zap.SugaredLogger, cfg *config.Config) (*Server, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	l, err := taplock.New(taplock.DefaultSize)
	if err != nil {
		return nil, err
	}
	return &Server{
		log:     log,
		limiter: l,
		cfg:     cfg,
		conns:   make(map[*conn]struct{}),
	}, nil
}

// OnSample registers fn to observe every sample delivered to an
// engine. It must be set before serving.
func (s *Server) OnSample(fn func(element string, smp pointer.Sample)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = fn
}

// Reconfigure applies cfg to new and existing connections.
func (s *Server) Reconfigure(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	for c := range s.conns {
		c.eng.Configure(cfg.Resolve(c.element))
	}
	s.log.Infow("configuration applied", "connections", len(s.conns))
}

// Len returns the number of open connections.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	element := r.URL.Query().Get("element")

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		ws.Close()
		return
	}
	c := newConn(s.log.With("element", element, "remote", r.RemoteAddr), ws, element, s.cfg.Resolve(element), s.record)
	c.eng.SetTapLimiter(s.limiter, element)
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	c.log.Info("client connected")
	go func() {
		c.serve()
		s.mu.Lock()
		delete(s.conns, c)
		s.releaseTapLock(element)
		s.mu.Unlock()
		c.log.Info("client disconnected")
	}()
}

// releaseTapLock forgets the tap lock of element once no connection
// drives it. s.mu must be held.
func (s *Server) releaseTapLock(element string) {
	for c := range s.conns {
		if c.element == element {
			return
		}
	}
	if s.limiter.Locked(element) {
		s.limiter.Unlock(element)
		s.log.Debugw("tap lock released", "element", element)
	}
}

// TapLocked reports whether taps of element are currently debounced.
func (s *Server) TapLocked(element string) bool {
	return s.limiter.Locked(element)
}

// Close disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closing = true
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.close()
	}
	return nil
}
