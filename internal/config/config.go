// Package config handles loading and managing remess configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DataConfig holds snapshot and contact data configuration.
type DataConfig struct {
	SnapshotPath string `toml:"snapshot_path"` // chat.db snapshot (default: ~/Library/Messages/chat.db)
	ContactsPath string `toml:"contacts_path"` // contacts.toml (default: <home>/contacts.toml)
}

// FilterConfig holds analysis-wide filtering configuration.
type FilterConfig struct {
	ExcludedHandles []string `toml:"excluded_handles"` // handles whose chats are dropped from every view
}

// ServerConfig holds local HTTP API server configuration.
type ServerConfig struct {
	APIPort int `toml:"api_port"` // HTTP server port (default: 8790)
}

type Config struct {
	Data   DataConfig   `toml:"data"`
	Filter FilterConfig `toml:"filter"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default remess home directory.
// Respects REMESS_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("REMESS_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".remess"
	}
	return filepath.Join(home, ".remess")
}

// defaultSnapshotPath is the live Messages database location on macOS.
func defaultSnapshotPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chat.db"
	}
	return filepath.Join(home, "Library", "Messages", "chat.db")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.remess/config.toml).
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		// Defaults
		Data: DataConfig{
			SnapshotPath: defaultSnapshotPath(),
			ContactsPath: filepath.Join(homeDir, "contacts.toml"),
		},
		Server: ServerConfig{
			APIPort: 8790,
		},
	}

	// Config file is optional - use defaults if not present
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Expand ~ in paths
	cfg.Data.SnapshotPath = expandPath(cfg.Data.SnapshotPath)
	cfg.Data.ContactsPath = expandPath(cfg.Data.ContactsPath)

	return cfg, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
