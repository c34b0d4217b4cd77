package mcpserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/transpass/transpass/internal/core"
)

// Config is the MCP server configuration loaded from mcp.yaml.
type Config struct {
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
	// SearchLimit is the default result count for search_products.
	SearchLimit int                     `yaml:"search_limit"`
	Tools       map[string]ToolOverride `yaml:"tools"`
}

// ToolOverride allows per-tool customization.
type ToolOverride struct {
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

// LoadConfig reads and parses the mcp.yaml configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses mcp.yaml configuration from raw bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}

	if cfg.Name == "" {
		cfg.Name = "transpass"
	}
	if cfg.Instructions == "" {
		cfg.Instructions = "Read-only access to Transpass product passports, QR codes and scan analytics."
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 20
	}
	if cfg.SearchLimit > core.MaxSearchLimit {
		cfg.SearchLimit = core.MaxSearchLimit
	}

	return &cfg, nil
}

// description returns the configured description for a tool, or def.
func (c *Config) description(tool, def string) string {
	if o, ok := c.Tools[tool]; ok && o.Description != "" {
		return o.Description
	}
	return def
}

func (c *Config) enabled(tool string) bool {
	return !c.Tools[tool].Disabled
}
