package client

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/protocol"
)

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://quiz.example.com/", "wss://quiz.example.com/ws"},
		{"ws://127.0.0.1:9000/game", "ws://127.0.0.1:9000/game/ws"},
		{"ws://localhost:8080/ws", "ws://localhost:8080/ws"},
	}
	for _, tt := range tests {
		got, err := websocketURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := websocketURL("ftp://localhost")
	assert.Error(t, err)
}

func TestSendBeforeConnect(t *testing.T) {
	c := NewClient("http://localhost:1", log.NewWithOptions(io.Discard, log.Options{}))
	assert.ErrorIs(t, c.Answer("42"), ErrNotConnected)
	assert.False(t, c.IsConnected())
	require.NoError(t, c.Disconnect())
	require.NoError(t, c.Disconnect())
}

func TestWaitForMessageHonoursContext(t *testing.T) {
	c := NewClient("http://localhost:1", log.NewWithOptions(io.Discard, log.Options{}))
	c.inbox <- protocol.Text(protocol.TypeInfo, "hello")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.WaitForMessage(ctx, protocol.TypeScores)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadClientConfig(t *testing.T) {
	cfg, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultClientConfig(), cfg)

	path := filepath.Join(t.TempDir(), "client.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "http://quiz.local:9000"
}
player {
  name = "ana"
}
ui {
  log_level = "debug"
}
`), 0o644))

	cfg, err = LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://quiz.local:9000", cfg.Server.URL)
	assert.Equal(t, 10, cfg.Server.ConnectTimeout)
	assert.Equal(t, "ana", cfg.Player.Name)
	assert.Equal(t, "debug", cfg.UI.LogLevel)
	assert.Equal(t, "default", cfg.UI.Theme)
	require.NoError(t, cfg.Validate())

	cfg.Player.Name = ""
	assert.Error(t, cfg.Validate())
}

func TestParseClientConfigPartial(t *testing.T) {
	cfg, err := ParseClientConfig([]byte(`player { name = "bob" }`), "client.hcl")
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Player.Name)
	assert.Equal(t, "http://localhost:8080", cfg.Server.URL)
	assert.Equal(t, "quizforbots-client.log", cfg.UI.LogFile)
	require.NoError(t, cfg.Validate())

	cfg.UI.Theme = "neon"
	assert.ErrorContains(t, cfg.Validate(), "invalid theme")

	_, err = ParseClientConfig([]byte(`player {`), "client.hcl")
	assert.Error(t, err)
}
