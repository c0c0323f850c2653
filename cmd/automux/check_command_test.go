package main

import (
	"errors"
	"path/filepath"
	"testing"

	"automux/internal/testsupport"
)

func TestCheckReady(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithMkvmergeScript("echo 'mkvmerge v80.0'\n"))

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "== Environment ==")
	requireContains(t, out, "State directory")
	requireContains(t, out, "mkvmerge v80.0")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "[OK] ready")
}

func TestCheckMissingMkvmerge(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Mkvmerge.Binary = filepath.Join(env.baseDir, "missing", "mkvmerge")
	writeTestConfig(t, env.configPath, env.cfg)

	out, stderr, err := runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	requireContains(t, out, "ERROR")
	requireContains(t, stderr, "environment is not ready")
}
