package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/fieldnote/obsmap/pkg/logging"
)

// SenderHeader carries the client identity on every HTTP and websocket
// request.
const SenderHeader = "X-Obsmap-Sender"

// Server exposes the bridge over loopback HTTP. Clients either issue
// one-shot requests (GET /state, POST /message) or hold a websocket on
// /ws and exchange Request/Response frames.
type Server struct {
	bridge *Bridge
	logger *logging.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer builds the HTTP surface for a bridge.
func NewServer(addr string, bridge *Bridge, logger *logging.Logger) *Server {
	s := &Server{
		bridge: bridge,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Loopback only; the sender header is the authorization check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/state", s.handleState)
	r.Post("/message", s.handleMessage)
	r.Get("/ws", s.handleWebsocket)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving the bridge until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Infof("bridge listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := s.bridge.Handle(r.Header.Get(SenderHeader), Request{Action: ActionGetState})
	s.writeJSON(w, resp)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, errorResponse("malformed request"))
		return
	}
	resp := s.bridge.Handle(r.Header.Get(SenderHeader), req)
	s.writeJSON(w, resp)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sender := r.Header.Get(SenderHeader)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	remote := "unknown"
	if host, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
		remote = host
	}
	s.logger.Debugf("websocket client connected from %s", remote)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debugf("websocket read error: %v", err)
			}
			return
		}

		resp := s.bridge.Handle(sender, req)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debugf("websocket write error: %v", err)
			return
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorf("failed to encode response: %v", err)
	}
}
