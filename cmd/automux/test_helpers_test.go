package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automux/internal/config"
	"automux/internal/testsupport"
)

// mkvmergeWritingOutput creates the -o target and reports progress.
const mkvmergeWritingOutput = "out=''\nwhile [ $# -gt 0 ]; do if [ \"$1\" = -o ]; then out=$2; fi; shift; done\n" +
	"printf 'Progress: 50%%\\rProgress: 100%%\\r\\n'\n: > \"$out\"\n"

// mkvmergeRecordingArgs creates the -o target and writes its arguments, one per
// line, to <output>.args.
const mkvmergeRecordingArgs = "out=''\nfor a in \"$@\"; do if [ \"$prev\" = -o ]; then out=$a; fi; prev=$a; done\n" +
	"printf '%s\\n' \"$@\" > \"$out.args\"\n: > \"$out\"\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	workDir    string
	dataHome   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	home := filepath.Join(base, "home")
	dataHome := filepath.Join(base, "data")
	for _, dir := range []string{home, dataHome} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("NO_COLOR", "1")

	configPath := filepath.Join(base, "automux.toml")
	writeTestConfig(t, configPath, cfg)

	work := filepath.Join(base, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	t.Chdir(work)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		workDir:    work,
		dataHome:   dataHome,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\n\n[mkvmerge]\nbinary = %q\naccept_warnings = %t\n\n"+
			"[inference]\nforced_marker = %q\n\n[history]\nenabled = %t\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.StateDir,
		cfg.Mkvmerge.Binary,
		cfg.Mkvmerge.AcceptWarnings,
		cfg.Inference.ForcedMarker,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
