package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/quizforbots/internal/game"
	"github.com/lox/quizforbots/internal/session"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server    *ServerSettings  `hcl:"server,block"`
	Session   *SessionSettings `hcl:"session,block"`
	Rounds    []RoundConfig    `hcl:"round,block"`
	Questions []QuestionConfig `hcl:"question,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	// ResultsFile receives a JSON summary once the session ends; empty skips it.
	ResultsFile string `hcl:"results_file,optional"`
}

// SessionSettings controls registration and the round sequence. Durations
// are Go duration strings such as "30s" or "800ms".
type SessionSettings struct {
	RegistrationWindow string   `hcl:"registration_window,optional"`
	Quorum             int      `hcl:"quorum,optional"`
	MaxPlayers         int      `hcl:"max_players,optional"`
	Interlude          string   `hcl:"interlude,optional"`
	Order              []string `hcl:"order,optional"`
}

// RoundConfig overrides the rules of one game kind
type RoundConfig struct {
	Kind          string `hcl:"kind,label"`
	Duration      string `hcl:"duration,optional"`
	Points        int    `hcl:"points,optional"`
	ReducedPoints int    `hcl:"reduced_points,optional"`
	Attempts      int    `hcl:"attempts,optional"`
	Target        int    `hcl:"target,optional"`
	Tiles         []int  `hcl:"tiles,optional"`
}

// QuestionConfig is one entry of the trivia question bank
type QuestionConfig struct {
	Prompt  string   `hcl:"prompt"`
	Answer  string   `hcl:"answer"`
	Aliases []string `hcl:"aliases,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decodeServerConfig(file)
}

// ParseServerConfig parses configuration from memory
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeServerConfig(file)
}

func decodeServerConfig(file *hcl.File) (*ServerConfig, error) {
	var config ServerConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills in anything the file left out
func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Session == nil {
		c.Session = &SessionSettings{}
	}
	if c.Session.RegistrationWindow == "" {
		c.Session.RegistrationWindow = session.DefaultRegistrationWindow.String()
	}
	if c.Session.Quorum == 0 {
		c.Session.Quorum = session.DefaultQuorum
	}
	if c.Session.Interlude == "" {
		c.Session.Interlude = session.DefaultInterlude.String()
	}
	if len(c.Session.Order) == 0 {
		for _, k := range game.DefaultOrder() {
			c.Session.Order = append(c.Session.Order, k.String())
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if _, err := parseDuration("registration_window", c.Session.RegistrationWindow, false); err != nil {
		return err
	}
	if _, err := parseDuration("interlude", c.Session.Interlude, true); err != nil {
		return err
	}
	if c.Session.Quorum < 1 {
		return fmt.Errorf("quorum must be at least 1")
	}
	if c.Session.MaxPlayers < 0 {
		return fmt.Errorf("max_players cannot be negative")
	}
	if c.Session.MaxPlayers > 0 && c.Session.Quorum > c.Session.MaxPlayers {
		return fmt.Errorf("quorum %d exceeds max_players %d", c.Session.Quorum, c.Session.MaxPlayers)
	}
	for _, name := range c.Session.Order {
		if _, err := game.ParseKind(name); err != nil {
			return fmt.Errorf("session order: %w", err)
		}
	}

	seen := make(map[game.Kind]bool)
	for _, round := range c.Rounds {
		kind, err := game.ParseKind(round.Kind)
		if err != nil {
			return fmt.Errorf("round %q: %w", round.Kind, err)
		}
		if seen[kind] {
			return fmt.Errorf("round %q configured more than once", round.Kind)
		}
		seen[kind] = true

		if round.Duration != "" {
			if _, err := parseDuration("round "+round.Kind+" duration", round.Duration, false); err != nil {
				return err
			}
		}
		if round.Points < 0 || round.ReducedPoints < 0 || round.Attempts < 0 {
			return fmt.Errorf("round %q: points and attempts cannot be negative", round.Kind)
		}
		if round.Target != 0 || len(round.Tiles) > 0 {
			if kind != game.KindTargetNumber {
				return fmt.Errorf("round %q: target and tiles only apply to %s", round.Kind, game.KindTargetNumber)
			}
			if err := game.ValidatePuzzle(round.Target, round.Tiles); err != nil {
				return fmt.Errorf("round %q: %w", round.Kind, err)
			}
		}
	}

	for i, q := range c.Questions {
		if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("question %d: prompt and answer are required", i+1)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// SessionConfig converts the file settings into a session configuration.
// The configuration must have been validated.
func (c *ServerConfig) SessionConfig(seed int64) (session.Config, error) {
	cfg := session.Config{
		Quorum:  c.Session.Quorum,
		Seed:    seed,
		Options: make(map[game.Kind]game.Options),
	}

	var err error
	if cfg.RegistrationWindow, err = parseDuration("registration_window", c.Session.RegistrationWindow, false); err != nil {
		return cfg, err
	}
	if cfg.Interlude, err = parseDuration("interlude", c.Session.Interlude, true); err != nil {
		return cfg, err
	}

	for _, name := range c.Session.Order {
		kind, err := game.ParseKind(name)
		if err != nil {
			return cfg, err
		}
		cfg.Order = append(cfg.Order, kind)
	}

	for _, round := range c.Rounds {
		kind, err := game.ParseKind(round.Kind)
		if err != nil {
			return cfg, err
		}
		opts := game.Options{
			Points:        round.Points,
			ReducedPoints: round.ReducedPoints,
			Attempts:      round.Attempts,
			Target:        round.Target,
			Tiles:         round.Tiles,
		}
		if round.Duration != "" {
			if opts.Duration, err = parseDuration("round "+round.Kind+" duration", round.Duration, false); err != nil {
				return cfg, err
			}
		}
		cfg.Options[kind] = opts
	}

	if len(c.Questions) > 0 {
		opts := cfg.Options[game.KindTrivia]
		for _, q := range c.Questions {
			opts.Questions = append(opts.Questions, game.Question{
				Prompt:  q.Prompt,
				Answer:  q.Answer,
				Aliases: q.Aliases,
			})
		}
		cfg.Options[game.KindTrivia] = opts
	}

	return cfg, nil
}

func parseDuration(field, value string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, value)
	}
	return d, nil
}
