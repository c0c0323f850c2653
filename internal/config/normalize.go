package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMkvmerge(); err != nil {
		return err
	}
	c.normalizeMerge()
	c.normalizeInference()
	c.normalizeHistory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMkvmerge() error {
	binary := strings.TrimSpace(c.Mkvmerge.Binary)
	if binary == "" {
		if value, ok := os.LookupEnv(mkvmergeEnvVar); ok {
			binary = strings.TrimSpace(value)
		}
	}
	if binary == "" {
		binary = platformMkvmerge(runtime.GOOS)
	}
	if strings.ContainsAny(binary, `/\`) || strings.HasPrefix(binary, "~") {
		expanded, err := expandPath(binary)
		if err != nil {
			return fmt.Errorf("mkvmerge.binary: %w", err)
		}
		binary = expanded
	}
	c.Mkvmerge.Binary = binary
	return nil
}

// platformMkvmerge returns the default executable for goos. On Windows
// MKVToolNix installs outside PATH, so the Program Files location is used
// when the variable is set.
func platformMkvmerge(goos string) string {
	if goos == "windows" {
		if os.Getenv("PROGRAMFILES") != "" {
			return os.ExpandEnv(windowsMkvmergePath)
		}
		return defaultMkvmergeName + ".exe"
	}
	return defaultMkvmergeName
}

func (c *Config) normalizeMerge() {
	patterns := make([]string, 0, len(c.Merge.IncludePatterns))
	seen := make(map[string]struct{}, len(c.Merge.IncludePatterns))
	for _, pattern := range c.Merge.IncludePatterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		patterns = append(patterns, trimmed)
	}
	c.Merge.IncludePatterns = patterns
	if strings.TrimSpace(c.Merge.OutputSuffix) == "" {
		c.Merge.OutputSuffix = defaultOutputSuffix
	}
}

func (c *Config) normalizeInference() {
	c.Inference.ForcedMarker = strings.ToLower(strings.TrimSpace(c.Inference.ForcedMarker))
	if c.Inference.ForcedMarker == "" {
		c.Inference.ForcedMarker = defaultForcedMarker
	}
}

func (c *Config) normalizeHistory() {
	if c.History.Limit <= 0 {
		c.History.Limit = defaultHistoryLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.ProgressEveryPercent <= 0 || c.Logging.ProgressEveryPercent > 100 {
		c.Logging.ProgressEveryPercent = defaultProgressEvery
	}
}
