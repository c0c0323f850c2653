package config

import (
	"errors"
	"fmt"
	"strings"

	"automux/internal/inference"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Mkvmerge.Binary) == "" {
		return errors.New("mkvmerge.binary could not be resolved")
	}
	if strings.ContainsAny(c.Merge.OutputSuffix, `/\`) {
		return fmt.Errorf("merge.output_suffix %q must not contain path separators", c.Merge.OutputSuffix)
	}
	if _, err := inference.ParseForcedMarkerMode(c.Inference.ForcedMarker); err != nil {
		return fmt.Errorf("inference.forced_marker: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ForcedMarkerMode returns the validated forced marker mode.
func (c *Config) ForcedMarkerMode() inference.ForcedMarkerMode {
	mode, err := inference.ParseForcedMarkerMode(c.Inference.ForcedMarker)
	if err != nil {
		return inference.ForcedMarkerOff
	}
	return mode
}
