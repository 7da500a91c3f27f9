package commands

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/client"
)

func TestLoadConfigAppliesOverrides(t *testing.T) {
	flags := &GlobalFlags{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		Server:   "ws://quiz.example:9000/ws",
		Player:   "ana",
		LogLevel: "debug",
		LogFile:  "ana.log",
	}

	cfg, err := LoadConfig(flags)
	require.NoError(t, err)
	assert.Equal(t, "ws://quiz.example:9000/ws", cfg.Server.URL)
	assert.Equal(t, "ana", cfg.Player.Name)
	assert.Equal(t, "debug", cfg.UI.LogLevel)
	assert.Equal(t, "ana.log", cfg.UI.LogFile)
	assert.Equal(t, 10, cfg.Server.ConnectTimeout)
}

func TestLoadConfigKeepsFileValues(t *testing.T) {
	cfg, err := LoadConfig(&GlobalFlags{Config: filepath.Join(t.TempDir(), "missing.hcl")})
	require.NoError(t, err)
	assert.Equal(t, client.DefaultClientConfig(), cfg)
}

func TestSetupRequiresPlayerName(t *testing.T) {
	cfg := client.DefaultClientConfig()

	_, _, err := setupClientConfigured(context.Background(), cfg, io.Discard, strings.NewReader("\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player name is required")
}

func TestSetupFailsWithoutServer(t *testing.T) {
	cfg := client.DefaultClientConfig()
	cfg.Server.URL = "ws://127.0.0.1:1/ws"
	cfg.Server.ConnectTimeout = 1

	_, _, err := setupClientConfigured(context.Background(), cfg, io.Discard, strings.NewReader("bob\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to server")
	assert.Equal(t, "bob", cfg.Player.Name)
}
