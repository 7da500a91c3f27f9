package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/quizforbots/internal/protocol"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
	inboxSize    = 256
)

// ErrNotConnected is returned when sending before Connect or after Disconnect
var ErrNotConnected = errors.New("not connected")

// Client is a WebSocket player connection to a quiz server
type Client struct {
	serverURL  string
	conn       *websocket.Conn
	send       chan protocol.Envelope
	inbox      chan protocol.Envelope
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	connected  bool
	playerName string
	closeOnce  sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan protocol.Envelope, 256),
		inbox:     make(chan protocol.Envelope, inboxSize),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// websocketURL turns an http(s) or ws(s) base URL into the /ws endpoint
func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme: %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path += "/ws"
	}
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	wsURL, err := websocketURL(c.serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
		}
		c.connected = false

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Done is closed when the client has been disconnected
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendEnvelope queues an envelope for the server
func (c *Client) SendEnvelope(env protocol.Envelope) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Register asks the server to add this client under name
func (c *Client) Register(name string) error {
	c.mu.Lock()
	c.playerName = name
	c.mu.Unlock()
	return c.SendEnvelope(protocol.Text(protocol.TypeRegister, name))
}

// Answer submits an answer to the active round
func (c *Client) Answer(text string) error {
	return c.SendEnvelope(protocol.Text(protocol.TypeAnswer, text))
}

// PlayerName returns the name passed to Register
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// Envelopes delivers every envelope received from the server, in order. The
// channel is closed when the connection ends.
func (c *Client) Envelopes() <-chan protocol.Envelope {
	return c.inbox
}

// readPump handles incoming envelopes from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.inbox)
		_ = c.Disconnect()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		env, err := protocol.Unmarshal(data)
		if err != nil {
			c.logger.Warn("Ignoring envelope", "error", err)
			continue
		}
		c.logger.Debug("Received envelope", "type", env.Type)

		select {
		case c.inbox <- env:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing envelopes to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case env := <-c.send:
			data, err := protocol.Marshal(env)
			if err != nil {
				c.logger.Error("Failed to encode envelope", "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// WaitForMessage consumes envelopes until one of the given type arrives.
// Envelopes of other types are discarded.
func (c *Client) WaitForMessage(ctx context.Context, messageType protocol.MessageType) (protocol.Envelope, error) {
	for {
		select {
		case env, ok := <-c.inbox:
			if !ok {
				return protocol.Envelope{}, ErrNotConnected
			}
			if env.Type == messageType {
				return env, nil
			}
		case <-ctx.Done():
			return protocol.Envelope{}, fmt.Errorf("waiting for %s: %w", messageType, ctx.Err())
		}
	}
}
