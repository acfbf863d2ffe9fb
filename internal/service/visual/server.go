package visual

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/homevoice/pkg/log"
)

const writeTimeout = 5 * time.Second

type stateFrame struct {
	State string `json:"state"`
	At    string `json:"at"`
}

// Server pushes the assistant's coarse state (Idle, Listening,
// Processing, Speaking) to any connected visualizer front end. New
// connections immediately receive the current state.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	last  string
}

func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Local trusted network front end
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		last:  "Idle",
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	s.httpSrv = &http.Server{Addr: s.addr, Handler: mux}
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("visualizer server listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Broadcast implements core.StatusBroadcaster. Dead connections are
// dropped on write failure.
func (s *Server) Broadcast(state string) {
	frame := stateFrame{State: state, At: time.Now().Format(time.RFC3339)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = state
	for c := range s.conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteJSON(frame); err != nil {
			_ = c.Close()
			delete(s.conns, c)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	last := s.last
	s.mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = conn.WriteJSON(stateFrame{State: last, At: time.Now().Format(time.RFC3339)})

	// Read loop only to observe the close; clients never send.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
