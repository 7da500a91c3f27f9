package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/quizforbots/internal/protocol"
	"github.com/lox/quizforbots/internal/session"
)

// Server accepts WebSocket players and delivers session envelopes to them.
// It implements session.Broadcaster.
type Server struct {
	sessionID   string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	orch        *session.Orchestrator
	roster      *session.Roster
}

var _ session.Broadcaster = (*Server)(nil)

// ErrNoSession is returned to players registering before a session exists
var ErrNoSession = errors.New("no session is running")

// NewServer creates a new WebSocket server and starts its connection loop
func NewServer(sessionID string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		sessionID: sessionID,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server").With("session", sessionID),
		ctx:         ctx,
		cancel:      cancel,
	}
	go s.run()
	return s
}

// SetSession attaches the orchestrator whose roster players register into
func (s *Server) SetSession(o *session.Orchestrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orch = o
	s.roster = o.Roster()
}

// Handler returns the HTTP routes served by this server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down WebSocket server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Stop()
	return err
}

// Stop closes every connection and ends the connection loop
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close() // Ignore close errors during unregistration
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "player", conn.Player(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// Health is the body of the /health endpoint
type Health struct {
	Status      string   `json:"status"`
	Session     string   `json:"session"`
	Phase       string   `json:"phase"`
	Round       int      `json:"round"`
	Rounds      int      `json:"rounds"`
	Game        string   `json:"game,omitempty"`
	RoundState  string   `json:"roundState,omitempty"`
	Players     []string `json:"players"`
	Connections int      `json:"connections"`
}

// handleHealth reports the session state as JSON
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	orch := s.orch
	health := Health{
		Status:      "ok",
		Session:     s.sessionID,
		Players:     []string{},
		Connections: len(s.connections),
	}
	s.mu.RUnlock()

	if orch != nil {
		st := orch.Status()
		health.Phase = st.Phase.String()
		health.Round = st.Round
		health.Rounds = st.Rounds
		if st.Round > 0 {
			health.Game = st.Kind.String()
			health.RoundState = st.State.String()
		}
		health.Players = orch.Roster().Names()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}

// Broadcast sends an envelope to every registered player. Failures are
// logged and skipped.
func (s *Server) Broadcast(env protocol.Envelope) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Player() == "" {
			continue
		}
		if err := conn.SendEnvelope(env); err != nil {
			s.logger.Warn("Failed to send message to client", "error", err, "player", conn.Player())
			continue
		}
		count++
	}

	s.logger.Debug("Broadcasted envelope", "type", env.Type, "recipients", count)
}

// Send delivers an envelope to one player
func (s *Server) Send(player string, env protocol.Envelope) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.Player() == player {
			return conn.SendEnvelope(env)
		}
	}

	return fmt.Errorf("player not connected: %s", player)
}

// ConnectedPlayers returns the names of registered players with a live connection
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if name := conn.Player(); name != "" {
			players = append(players, name)
		}
	}
	return players
}

// registerPlayer holds the server lock so no broadcast can slip between the
// roster accepting the name and the connection learning it.
func (s *Server) registerPlayer(conn *Connection, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roster == nil {
		return "", ErrNoSession
	}
	registered, err := s.roster.Register(name)
	if err != nil {
		return "", err
	}
	conn.SetPlayer(registered)
	return registered, nil
}

func (s *Server) submitAnswer(player, answer string) bool {
	s.mu.RLock()
	orch := s.orch
	s.mu.RUnlock()

	if orch == nil {
		return false
	}
	return orch.Submit(player, answer)
}
