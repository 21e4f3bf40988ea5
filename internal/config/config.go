// Package config provides application configuration management for trustee.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the trustee configuration.
type Config struct {
	Theme         string       `json:"theme"`                    // Name of the active TUI theme
	Locale        string       `json:"locale,omitempty"`         // UI language (empty = detect from environment)
	StorageRoot   string       `json:"storage_root,omitempty"`   // Checkpoint storage root (empty = <home>/projects)
	LogFile       string       `json:"log_file,omitempty"`       // Diagnostic log file (empty = <home>/trustee.log)
	ResumeCommand string       `json:"resume_command,omitempty"` // Command template run by resume --exec
	Server        ServerConfig `json:"server"`                   // HTTP/MCP server settings
	Search        SearchConfig `json:"search"`                   // Transcript search settings
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Host      string `json:"host"`                 // Bind host
	Port      int    `json:"port"`                 // Bind port
	AuthToken string `json:"auth_token,omitempty"` // Bearer token (empty = no auth)
}

// Addr returns the host:port address to bind.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchConfig holds search index settings.
type SearchConfig struct {
	IndexPath string `json:"index_path,omitempty"` // Index database file (empty = <home>/index.duckdb)
	Watch     bool   `json:"watch"`                // Reindex on transcript changes while serving
	Debounce  string `json:"debounce"`             // Debounce duration (e.g. "2s")
}

// DebounceDuration returns the parsed debounce duration (default: 2s).
func (c SearchConfig) DebounceDuration() time.Duration {
	if c.Debounce != "" {
		if d, err := time.ParseDuration(c.Debounce); err == nil {
			return d
		}
	}
	return 2 * time.Second
}

// Dir returns the path to the .trustee directory. TRUSTEE_HOME overrides the
// default location under the user's home directory.
func Dir() (string, error) {
	if dir := os.Getenv("TRUSTEE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trustee"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load loads the configuration from <home>/config.json. A missing file
// yields the defaults without writing anything.
func Load() (Config, error) {
	configPath, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return Default(), nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys get correct values
	// (e.g. existing configs without a search section won't get
	// false/zero which would disable features).
	config := Default()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if config.Theme == "" {
		config.Theme = "dark"
	}
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 7433
	}

	return config, nil
}

// Default returns a default configuration with all defaults set.
func Default() Config {
	return Config{
		Theme: "dark",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7433,
		},
		Search: SearchConfig{
			Watch:    true,
			Debounce: "2s",
		},
	}
}

// Save saves the configuration to <home>/config.json.
func Save(config Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// StorageRootPath returns the checkpoint storage root, honoring the
// storage_root override.
func (c Config) StorageRootPath() (string, error) {
	if c.StorageRoot != "" {
		return c.StorageRoot, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// SearchIndexPath returns the search index database file, honoring the
// search.index_path override.
func (c Config) SearchIndexPath() (string, error) {
	if c.Search.IndexPath != "" {
		return c.Search.IndexPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "index.duckdb"), nil
}

// LogFilePath returns the diagnostic log file, honoring the log_file
// override.
func (c Config) LogFilePath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trustee.log"), nil
}
