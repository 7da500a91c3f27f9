package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/quizforbots/internal/client"
)

// GlobalFlags holds common configuration for client commands
type GlobalFlags struct {
	Config   string `short:"c" long:"config" default:"quizforbots-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" long:"player" help:"Player name (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
}

// LoadConfig loads the client configuration and applies flag overrides
func LoadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}
	return cfg, nil
}

// SetupClientWithFileLogging connects and registers a client, logging to the
// configured file so the terminal stays free for the UI. The cleanup
// function disconnects and closes the log file.
func SetupClientWithFileLogging(ctx context.Context, flags *GlobalFlags, stdin io.Reader) (*client.Client, *client.ClientConfig, *log.Logger, func(), error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// overwrite each run
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	wsClient, logger, err := setupClientConfigured(ctx, cfg, logFile, stdin)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = wsClient.Disconnect()
		_ = logFile.Close()
	}

	return wsClient, cfg, logger, cleanup, nil
}

// setupClientConfigured connects and registers with an already loaded config
func setupClientConfigured(ctx context.Context, cfg *client.ClientConfig, logWriter io.Writer, stdin io.Reader) (*client.Client, *log.Logger, error) {
	if cfg.Player.Name == "" {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Fscanln(stdin, &input)
		cfg.Player.Name = strings.TrimSpace(input)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Validate has already vetted the level name
	level, _ := log.ParseLevel(cfg.UI.LogLevel)
	logger := log.NewWithOptions(logWriter, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	wsClient := client.NewClient(cfg.Server.URL, logger)

	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ConnectTimeout)*time.Second)
	defer cancel()
	if err := wsClient.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	if err := wsClient.Register(cfg.Player.Name); err != nil {
		_ = wsClient.Disconnect()
		return nil, nil, fmt.Errorf("failed to register: %w", err)
	}

	return wsClient, logger, nil
}
