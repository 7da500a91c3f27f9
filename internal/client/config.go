package client

import (
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	themes    = []string{"default", "dark", "light"}
)

// ClientConfig is the player's HCL configuration. Every block is optional.
type ClientConfig struct {
	Server *ServerConnection `hcl:"server,block"`
	Player *PlayerSettings   `hcl:"player,block"`
	UI     *UISettings       `hcl:"ui,block"`
}

// ServerConnection says where the quiz server lives
type ServerConnection struct {
	URL            string `hcl:"url,optional"`
	ConnectTimeout int    `hcl:"connect_timeout,optional"` // seconds
}

// PlayerSettings holds the display name to register with
type PlayerSettings struct {
	Name string `hcl:"name,optional"`
}

// UISettings controls the terminal UI and its log file
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
	Theme    string `hcl:"theme,optional"`
}

// DefaultClientConfig returns the configuration used when no file exists
func DefaultClientConfig() *ClientConfig {
	cfg := &ClientConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadClientConfig reads filename, falling back to the defaults when the
// file does not exist.
func LoadClientConfig(filename string) (*ClientConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultClientConfig(), nil
	}

	file, diags := hclparse.NewParser().ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decodeClientConfig(file)
}

// ParseClientConfig parses configuration from memory
func ParseClientConfig(src []byte, filename string) (*ClientConfig, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeClientConfig(file)
}

func decodeClientConfig(file *hcl.File) (*ClientConfig, error) {
	var cfg ClientConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerConnection{}
	}
	if c.Server.URL == "" {
		c.Server.URL = "http://localhost:8080"
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = 10
	}

	if c.Player == nil {
		c.Player = &PlayerSettings{}
	}

	if c.UI == nil {
		c.UI = &UISettings{}
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = "warn"
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = "quizforbots-client.log"
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "default"
	}
}

// Validate checks the configuration is ready to connect with
func (c *ClientConfig) Validate() error {
	if _, err := websocketURL(c.Server.URL); err != nil {
		return err
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.Player.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if !slices.Contains(logLevels, c.UI.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}
	if !slices.Contains(themes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	return nil
}
