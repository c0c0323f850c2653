package main

import (
	"context"
	"testing"

	"automux/internal/testsupport"
)

func TestHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	testsupport.WriteFiles(t, env.workDir, "Movie.mkv", "Movie-eng.srt", "Movie-ger.forced.srt")
	if _, _, err := runCLI(t, []string{"-n", "Movie*"}, env.configPath); err != nil {
		t.Fatalf("dry run: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "dry_run")
	requireContains(t, out, "Movie-merged.mkv")

	store := testsupport.MustOpenHistory(t, env.cfg)
	runs, err := store.Recent(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("Recent = %v, %v", runs, err)
	}
	id := runs[0].ID
	requireContains(t, out, shortID(id))

	out, _, err = runCLI(t, []string{"history", "show", id[:6]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Run:      "+id)
	requireContains(t, out, "Dry run:  yes")
	requireContains(t, out, "English (eng)")
	requireContains(t, out, "German (ger)")
	requireContains(t, out, "Movie-ger.forced.srt")
}

func TestHistoryEmptyAndMissing(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	_, _, err = runCLI(t, []string{"history", "show", "deadbeef"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
	requireContains(t, err.Error(), "not found")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory(false))

	_, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when history is disabled")
	}
	requireContains(t, err.Error(), "history is disabled")
}

func TestLanguageLabel(t *testing.T) {
	tests := map[string]string{
		"":    "-",
		"eng": "English (eng)",
		"xyz": "xyz",
	}
	for code, want := range tests {
		if got := languageLabel(code); got != want {
			t.Errorf("languageLabel(%q) = %q, want %q", code, got, want)
		}
	}
}
