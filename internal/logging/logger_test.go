package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automux/internal/config"
	"automux/internal/logging"
	"automux/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug message") {
		t.Fatalf("expected debug message in log file, got %q", content)
	}
}

func TestConsoleLoggerCallerByLevel(t *testing.T) {
	tests := []struct {
		level      string
		wantCaller bool
	}{
		{"info", false},
		{"debug", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "console.log")
			logger, err := logging.New(logging.Options{Format: "console", Level: tt.level, OutputPaths: []string{logPath}})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			logger.Info("caller check")

			content, err := os.ReadFile(logPath)
			if err != nil {
				t.Fatalf("read log file: %v", err)
			}
			if got := strings.Contains(string(content), ".go:"); got != tt.wantCaller {
				t.Fatalf("caller present = %v, want %v in %q", got, tt.wantCaller, content)
			}
		})
	}
}

func TestConsoleLoggerRendersComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "mkvmerge").Info("merge started", logging.String("output", "movie merged.mkv"), logging.Int("inputs", 2))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO mkvmerge: merge started", `output="movie merged.mkv"`, "inputs=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNewJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["msg"] != "json message" || record["k"] != "v" || record["level"] != "info" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled for invalid level")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be enabled for invalid level")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithStage(ctx, "merge")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldRunID] != "run-123" {
		t.Fatalf("run_id = %v", record[logging.FieldRunID])
	}
	if record[logging.FieldStage] != "merge" {
		t.Fatalf("stage = %v", record[logging.FieldStage])
	}
}

func TestWarnWithContextAddsHint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "trash failed", "trash_failed", "check the trash directory permissions", logging.String("path", "a.mkv"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldEventType] != "trash_failed" || record[logging.FieldErrorHint] == nil || record["path"] != "a.mkv" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNilLoggersAreSafe(t *testing.T) {
	logging.WarnWithContext(nil, "ignored", "x", "y")
	logging.NewComponentLogger(nil, "x").Info("dropped")
	logging.WithContext(context.Background(), nil).Info("dropped")
}
