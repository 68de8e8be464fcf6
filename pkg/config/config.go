// Package config handles loading and saving bwk configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/bwk/config.yaml
//   - Data:    ~/.local/share/bwk/ (snapshots)
//   - State:   ~/.local/state/bwk/ (recent projects, view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Server holds the backend connection settings.
type Server struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

// Workspace pins the default navigation context opened on start.
type Workspace struct {
	OrganizationID string `yaml:"organization_id,omitempty"`
	ProjectKey     string `yaml:"project_key,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView      string `yaml:"default_view,omitempty"` // board, backlog
	ShowEmptyColumns bool   `yaml:"show_empty_columns,omitempty"`
}

// SnapshotConfig controls offline snapshot behavior.
type SnapshotConfig struct {
	Path   string `yaml:"path,omitempty"`   // default snapshot file
	Format string `yaml:"format,omitempty"` // jsonl or sqlite
}

// Config is the top-level configuration for bwk.
type Config struct {
	Server    Server         `yaml:"server"`
	Workspace Workspace      `yaml:"workspace,omitempty"`
	UI        UIConfig       `yaml:"ui,omitempty"`
	Snapshot  SnapshotConfig `yaml:"snapshot,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{URL: "http://localhost:3000"},
		UI: UIConfig{
			DefaultView:      "board",
			ShowEmptyColumns: true,
		},
		Snapshot: SnapshotConfig{Format: "jsonl"},
	}
}

// ConfigDir returns the XDG config directory for bwk.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "bwk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bwk")
}

// DataDir returns the XDG data directory for bwk.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "bwk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "bwk")
}

// StateDir returns the XDG state directory for bwk.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "bwk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "bwk")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Environment overrides beat the file for credentials.
	if url := os.Getenv("BWK_SERVER_URL"); url != "" {
		cfg.Server.URL = url
	}
	if token := os.Getenv("BWK_TOKEN"); token != "" {
		cfg.Server.Token = token
	}

	cfg.Snapshot.Path = expandHome(cfg.Snapshot.Path)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultSnapshotPath returns the snapshot path from the config, or the
// conventional location under the XDG data dir.
func (c Config) DefaultSnapshotPath() string {
	if c.Snapshot.Path != "" {
		return c.Snapshot.Path
	}
	dir := DataDir()
	if dir == "" {
		return ""
	}
	name := "workspace.jsonl"
	if strings.EqualFold(c.Snapshot.Format, "sqlite") {
		name = "workspace.db"
	}
	return filepath.Join(dir, name)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
