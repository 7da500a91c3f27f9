package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/quizforbots/internal/protocol"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan protocol.Envelope
	player    string
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan protocol.Envelope, 256),
		server: server,
		logger: logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendEnvelope queues an envelope without blocking. A client that cannot
// keep up is disconnected.
func (c *Connection) SendEnvelope(env protocol.Envelope) error {
	c.mu.RLock()
	if c.ctx.Err() != nil {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	select {
	case c.send <- env:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.Player())
		_ = c.Close() // Ignore close errors
		return ErrSendBufferFull
	}
}

// SetPlayer associates this connection with a registered player
func (c *Connection) SetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = name
}

// Player returns the registered player name, or "" before registration
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrSendBufferFull   = errors.New("send buffer full")
)

// readPump handles incoming envelopes from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		env, err := protocol.Unmarshal(data)
		if err != nil {
			c.logger.Debug("Rejected envelope", "error", err)
			c.sendError(err.Error())
			continue
		}
		c.handleEnvelope(env)
	}
}

// writePump handles outgoing envelopes to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := protocol.Marshal(env)
			if err != nil {
				c.logger.Error("Failed to encode envelope", "error", err, "type", env.Type)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleEnvelope processes one inbound envelope
func (c *Connection) handleEnvelope(env protocol.Envelope) {
	c.logger.Debug("Received envelope", "type", env.Type, "player", c.Player())

	switch env.Type {
	case protocol.TypeRegister:
		c.handleRegister(env.Data)
	case protocol.TypeAnswer:
		c.handleAnswer(env.Data)
	default:
		c.sendError(fmt.Sprintf("%s cannot be sent by clients", env.Type))
	}
}

func (c *Connection) handleRegister(name string) {
	if current := c.Player(); current != "" {
		c.sendError(fmt.Sprintf("already registered as %s", current))
		return
	}

	registered, err := c.server.registerPlayer(c, name)
	if err != nil {
		c.logger.Info("Registration refused", "name", name, "error", err)
		c.sendError(err.Error())
		return
	}

	c.logger.Info("Player registered", "player", registered)
	_ = c.SendEnvelope(protocol.Text(protocol.TypeInfo,
		fmt.Sprintf("Welcome, %s! Waiting for the game to start.", registered)))
}

func (c *Connection) handleAnswer(answer string) {
	player := c.Player()
	if player == "" {
		c.sendError("register before answering")
		return
	}

	if !c.server.submitAnswer(player, answer) {
		c.logger.Debug("Answer ignored, no active round", "player", player)
	}
}

// sendError sends an ERROR envelope to the client
func (c *Connection) sendError(message string) {
	_ = c.SendEnvelope(protocol.Text(protocol.TypeError, message)) // Ignore send errors during error handling
}
