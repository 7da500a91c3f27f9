package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/quizforbots/cmd/quizforbots/shared"
	"github.com/lox/quizforbots/internal/randutil"
	"github.com/lox/quizforbots/internal/results"
	"github.com/lox/quizforbots/internal/server"
	"github.com/lox/quizforbots/internal/session"
)

// ServerCmd runs one session: registration, every round, final scores
type ServerCmd struct {
	Config   string        `kong:"short='c',default='quizforbots.hcl',help='Path to HCL configuration file'"`
	Addr     string        `kong:"short='a',help='Server address to bind to (overrides config)'"`
	LogLevel string        `kong:"short='l',help='Log level (overrides config)'"`
	Debug    bool          `kong:"help='Enable debug logging'"`
	Seed     *int64        `kong:"help='Deterministic RNG seed for the session (optional)'"`
	Results  string        `kong:"help='Write a JSON session summary to this path (overrides config)'"`
	Linger   time.Duration `kong:"default='2s',help='How long to keep connections open after the final scores'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Results != "" {
		cfg.Server.ResultsFile = c.Results
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(c.Debug, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	seed, fixed := randutil.Seed(c.Seed)
	if fixed {
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Info("Using random seed", "seed", seed)
	}

	sessionCfg, err := cfg.SessionConfig(seed)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	sessionID := uuid.NewString()

	s := server.NewServer(sessionID, logger)
	roster := session.NewRoster(cfg.Session.MaxPlayers)
	orch, err := session.NewOrchestrator(sessionCfg, roster, s, quartz.NewReal(), logger.With("session", sessionID))
	if err != nil {
		return err
	}
	s.SetSession(orch)

	logger.Info("Starting QuizForBots server",
		"address", addr,
		"session", sessionID,
		"order", sessionCfg.Order,
		"quorum", sessionCfg.Quorum,
		"registration_window", sessionCfg.RegistrationWindow,
		"max_players", cfg.Session.MaxPlayers)

	ctx, cancel := context.WithCancel(shared.SetupSignalHandlerWithLogger(logger))
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Serve(gctx, addr)
	})
	g.Go(func() error {
		defer cancel()
		if err := orch.Run(gctx); err != nil {
			return err
		}
		if path := cfg.Server.ResultsFile; path != "" {
			summary := results.Build(sessionID, seed, time.Now(), orch.History(), roster.Snapshot())
			if err := results.Write(path, summary); err != nil {
				logger.Error("Failed to write results", "path", path, "error", err)
			} else {
				logger.Info("Wrote session results", "path", path)
			}
		}
		logger.Debug("Holding connections open", "linger", c.Linger)
		select {
		case <-gctx.Done():
		case <-time.After(c.Linger):
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
