package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"automux/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Mkvmerge.Binary = "mkvmerge"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistory toggles the run journal.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithForcedMarker sets the inference forced marker mode.
func WithForcedMarker(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Inference.ForcedMarker = mode
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, mkvmerge is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mkvmerge"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			writeScript(b.t, filepath.Join(binDir, name), "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithMkvmergeScript writes a shell script standing in for mkvmerge and
// points the config at it. Tests using it are skipped on Windows.
func WithMkvmergeScript(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "bin", "mkvmerge-stub")
		writeScript(b.t, path, body)
		b.cfg.Mkvmerge.Binary = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func writeScript(t testing.TB, path, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stubs are not supported on windows")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}
