package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/quizforbots/internal/client/commands"
	"github.com/lox/quizforbots/internal/tui"
)

// ClientCmd connects a human player through the terminal UI
type ClientCmd struct {
	commands.GlobalFlags
}

func (c *ClientCmd) Run() error {
	wsClient, cfg, logger, cleanup, err := commands.SetupClientWithFileLogging(context.Background(), &c.GlobalFlags, os.Stdin)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting QuizForBots client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"config", c.Config)

	if err := tui.ApplyTheme(cfg.UI.Theme); err != nil {
		return err
	}

	model := tui.NewTUIModel(cfg.Player.Name, wsClient.Envelopes(), wsClient, logger)
	model.AddLogEntry(tui.HeaderStyle.Render("=== QuizForBots ==="), "=== QuizForBots ===")
	model.AddLogEntry("Connected to server: "+cfg.Server.URL, "Connected to server: "+cfg.Server.URL)
	model.AddLogEntry("Type your answer and press Enter. Type quit to leave.", "Type your answer and press Enter. Type quit to leave.")

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
