package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Result", statusError, "environment is not ready", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Result:", "[ERROR] environment is not ready")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Result", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusCell(t *testing.T) {
	if got := statusCell(statusWarn, false); got != "WARN" {
		t.Fatalf("statusCell = %q", got)
	}
	if got := statusCell(statusError, true); got != ansiRed+"ERROR"+ansiReset {
		t.Fatalf("statusCell colored = %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
	if isTerminal(io.Discard) {
		t.Fatalf("expected non-file writer to not be a terminal")
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	got := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3", "extra"}}, []columnAlignment{alignRight})
	if !strings.Contains(got, "A") || !strings.Contains(got, "3") {
		t.Fatalf("table missing cells:\n%s", got)
	}
	if strings.Contains(got, "extra") {
		t.Fatalf("table kept cell beyond headers:\n%s", got)
	}
	if renderTable(nil, [][]string{{"x"}}, nil) != "" {
		t.Fatal("expected empty render without headers")
	}
}
