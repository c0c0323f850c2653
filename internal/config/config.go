package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Mkvmerge describes the external merge executable.
type Mkvmerge struct {
	// Binary is an explicit executable path. When empty it is resolved from
	// AUTOMUX_MKVMERGE, the MKVToolNix install dir on Windows, or PATH.
	Binary string `toml:"binary"`
	// AcceptWarnings treats mkvmerge exit status 1 (finished with warnings)
	// as success.
	AcceptWarnings bool `toml:"accept_warnings"`
}

// Merge contains batch defaults applied when flags are not given.
type Merge struct {
	IncludePatterns []string `toml:"include_patterns"`
	OutputSuffix    string   `toml:"output_suffix"`
	DeleteInputs    bool     `toml:"delete_inputs"`
}

// Inference tunes track metadata inference.
type Inference struct {
	// ForcedMarker selects how `forced subs:` lines in .idx files are used:
	// off, legacy, or flag.
	ForcedMarker string `toml:"forced_marker"`
}

// History controls the SQLite run journal.
type History struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format               string `toml:"format"`
	Level                string `toml:"level"`
	ProgressEveryPercent int    `toml:"progress_every_percent"`
}

// Config encapsulates all configuration values for automux.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Mkvmerge  Mkvmerge  `toml:"mkvmerge"`
	Merge     Merge     `toml:"merge"`
	Inference Inference `toml:"inference"`
	History   History   `toml:"history"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/automux/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("automux.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when configured, the
// log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MkvmergeBinary returns the resolved mkvmerge executable.
func (c *Config) MkvmergeBinary() string {
	return c.Mkvmerge.Binary
}

// HistoryPath returns the run journal database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyDatabaseName)
}

// LockPath returns the single-instance merge lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, mergeLockName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
