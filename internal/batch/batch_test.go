package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"automux/internal/history"
	"automux/internal/inputs"
	"automux/internal/mkvmerge"
	"automux/internal/progress"
	"automux/internal/services"
	"automux/internal/testsupport"
)

type stubMerger struct {
	err     error
	calls   int
	binary  string
	plan    mkvmerge.Plan
	percent []int
}

func (m *stubMerger) Run(_ context.Context, binary string, plan mkvmerge.Plan, onProgress func(int)) error {
	m.calls++
	m.binary = binary
	m.plan = plan
	for _, p := range m.percent {
		if onProgress != nil {
			onProgress(p)
		}
	}
	return m.err
}

type recordingTrasher struct {
	paths []string
	fail  map[string]bool
}

func (t *recordingTrasher) Trash(path string) error {
	if t.fail[filepath.Base(path)] {
		return errors.New("permission denied")
	}
	t.paths = append(t.paths, path)
	return os.Remove(path)
}

type fixture struct {
	dir     string
	out     *bytes.Buffer
	merger  *stubMerger
	trasher *recordingTrasher
	journal *history.Store
	runner  *Runner
}

func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	dir := filepath.Join(testsupport.BaseDir(cfg), "work")
	testsupport.WriteFiles(t, dir, files...)

	f := &fixture{
		dir:     dir,
		out:     &bytes.Buffer{},
		merger:  &stubMerger{},
		trasher: &recordingTrasher{},
		journal: testsupport.MustOpenHistory(t, cfg),
	}
	f.runner = New(cfg,
		WithMerger(f.merger),
		WithTrasher(f.trasher),
		WithJournal(f.journal),
		WithOutput(f.out),
	)
	return f
}

func (f *fixture) run(t *testing.T, req Request) Result {
	t.Helper()
	req.Cwd = f.dir
	res, err := f.runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return res
}

func (f *fixture) journaled(t *testing.T, id string) *history.Run {
	t.Helper()
	run, err := f.journal.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("journal Get: %v", err)
	}
	return run
}

func TestRunBuildsPlanWithInferredMetadata(t *testing.T) {
	f := newFixture(t, "Movie.mkv", "Movie-de.ac3", "Movie-en.forced.srt", "Movie-xx.srt")
	f.merger.percent = []int{1, 50, 100}
	var seen []int

	res := f.run(t, Request{Patterns: []string{"Movie*"}, Progress: func(p int) { seen = append(seen, p) }})
	if !res.Succeeded || res.Aborted || len(res.Errors) != 0 {
		t.Fatalf("unexpected result %#v", res)
	}
	if f.merger.binary != "mkvmerge" {
		t.Fatalf("binary = %q", f.merger.binary)
	}
	plan := f.merger.plan
	if plan.Output != "Movie-merged.mkv" || plan.Dir != f.dir {
		t.Fatalf("unexpected plan output/dir %q %q", plan.Output, plan.Dir)
	}
	want := []mkvmerge.Track{
		{Path: "Movie-de.ac3", Language: "ger"},
		{Path: "Movie-en.forced.srt", Language: "eng", Forced: true},
		{Path: "Movie-xx.srt"},
		{Path: "Movie.mkv"},
	}
	if !slices.Equal(plan.Tracks, want) {
		t.Fatalf("tracks = %#v, want %#v", plan.Tracks, want)
	}
	if !slices.Equal(seen, []int{1, 50, 100}) {
		t.Fatalf("progress = %v", seen)
	}
	if !strings.Contains(f.out.String(), "including file Movie-de.ac3\n") {
		t.Fatalf("missing including line in %q", f.out.String())
	}

	run := f.journaled(t, res.RunID)
	if run.Status != history.StatusSucceeded || run.ExitCode == nil || *run.ExitCode != 0 || len(run.Inputs) != 4 {
		t.Fatalf("unexpected journal entry %#v", run)
	}
}

func TestRunSubtitleIndexFallsBackToBody(t *testing.T) {
	f := newFixture(t, "Movie.mkv")
	testsupport.WriteFile(t, filepath.Join(f.dir, "Movie.idx"), "# VobSub index file, v7\nid: de, index: 0\n")

	f.run(t, Request{Patterns: []string{"Movie.mkv", "Movie.idx"}})
	if got := f.merger.plan.Tracks[1]; got.Language != "ger" {
		t.Fatalf("expected language from idx body, got %#v", got)
	}
}

func TestRunExplicitOutput(t *testing.T) {
	f := newFixture(t, "a.mkv", "a-merged.mkv")
	f.run(t, Request{Patterns: []string{"a.mkv"}, Output: "custom.mkv"})
	if f.merger.plan.Output != "custom.mkv" {
		t.Fatalf("output = %q", f.merger.plan.Output)
	}
}

func TestRunRefusesExistingGeneratedOutput(t *testing.T) {
	f := newFixture(t, "a.mkv", "a-merged.mkv")
	_, err := f.runner.Run(context.Background(), Request{Patterns: []string{"a.mkv"}, Cwd: f.dir})
	if !errors.Is(err, ErrOutputExists) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	if f.merger.calls != 0 {
		t.Fatal("merger should not run")
	}
}

func TestRunWithoutMkvLeavesOutputUnset(t *testing.T) {
	f := newFixture(t, "a.srt")
	f.run(t, Request{Patterns: []string{"a.srt"}})
	if f.merger.plan.Output != "" {
		t.Fatalf("expected no output, got %q", f.merger.plan.Output)
	}
}

func TestRunNoInput(t *testing.T) {
	f := newFixture(t, "notes.txt")
	_, err := f.runner.Run(context.Background(), Request{Patterns: []string{"*.mkv"}, Cwd: f.dir})
	if !errors.Is(err, inputs.ErrNoInput) {
		t.Fatalf("expected no input error, got %v", err)
	}
	if f.merger.calls != 0 {
		t.Fatal("merger should not run")
	}
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, "a.mkv", "a-en.idx", "a-en.sub")
	res := f.run(t, Request{Patterns: []string{"a*"}, DryRun: true, Delete: true})
	if !res.Succeeded || !res.DryRun {
		t.Fatalf("unexpected result %#v", res)
	}
	if f.merger.calls != 0 {
		t.Fatal("dry run must not launch mkvmerge")
	}
	if len(f.trasher.paths) != 0 {
		t.Fatal("dry run must not trash files")
	}
	if !slices.Equal(res.Trashed, []string{"a-en.idx", "a-en.sub", "a.mkv"}) {
		t.Fatalf("trashed = %q", res.Trashed)
	}
	testsupport.AssertExists(t, filepath.Join(f.dir, "a.mkv"))
	if !strings.Contains(f.out.String(), "moving a-en.sub to trash\n") {
		t.Fatalf("expected trash preview, got %q", f.out.String())
	}
	if run := f.journaled(t, res.RunID); run.Status != history.StatusDryRun || !run.DryRun {
		t.Fatalf("unexpected journal entry %#v", run)
	}
}

func TestRunDeleteTrashesInputsAndCompanions(t *testing.T) {
	f := newFixture(t, "a.mkv", "a-en.idx", "a-en.sub", "b-fr.srt")
	f.trasher.fail = map[string]bool{"b-fr.srt": true}

	res := f.run(t, Request{Patterns: []string{"a*", "b-fr.srt"}, Delete: true})
	if !res.Succeeded {
		t.Fatalf("unexpected result %#v", res)
	}
	if !slices.Equal(res.Trashed, []string{"a-en.idx", "a-en.sub", "a.mkv"}) {
		t.Fatalf("trashed = %q", res.Trashed)
	}
	testsupport.AssertMissing(t, filepath.Join(f.dir, "a-en.sub"))
	testsupport.AssertExists(t, filepath.Join(f.dir, "b-fr.srt"))

	run := f.journaled(t, res.RunID)
	for _, in := range run.Inputs {
		if want := in.Path != "b-fr.srt"; in.Trashed != want {
			t.Fatalf("input %s trashed = %v, want %v", in.Path, in.Trashed, want)
		}
	}
}

func TestRunFailureKeepsInputs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode *int
		want     []string
	}{
		{
			name:     "exit code",
			err:      &mkvmerge.ExitError{Code: 2},
			wantCode: ptr(2),
			want:     []string{"mkvmerge failed with the exit code 2"},
		},
		{
			name: "no exit status",
			err:  &mkvmerge.ExitError{Code: -1},
			want: []string{"mkvmerge failed"},
		},
		{
			name: "stream error",
			err:  fmt.Errorf("%w: %w", services.ErrExternalTool, &progress.StreamError{Message: "Could not open 'x.srt'"}),
			want: []string{"Could not open 'x.srt'", "mkvmerge failed"},
		},
		{
			name: "stream error with exit code",
			err: errors.Join(
				fmt.Errorf("%w: %w", services.ErrExternalTool, &progress.StreamError{Message: "Could not open 'x.srt'"}),
				&mkvmerge.ExitError{Code: 2},
			),
			wantCode: ptr(2),
			want:     []string{"Could not open 'x.srt'", "mkvmerge failed"},
		},
		{
			name: "launch failure",
			err:  fmt.Errorf("%w: %w", mkvmerge.ErrLaunch, errors.New("no such file")),
			want: []string{"no such file", "mkvmerge failed"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "a.mkv")
			f.merger.err = tt.err

			res := f.run(t, Request{Patterns: []string{"a.mkv"}, Delete: true})
			if res.Succeeded || res.Aborted {
				t.Fatalf("unexpected result %#v", res)
			}
			if !slices.Equal(res.Errors, tt.want) {
				t.Fatalf("errors = %q, want %q", res.Errors, tt.want)
			}
			if (tt.wantCode == nil) != (res.ExitCode == nil) || (tt.wantCode != nil && *tt.wantCode != *res.ExitCode) {
				t.Fatalf("exit code = %v, want %v", res.ExitCode, tt.wantCode)
			}
			if len(f.trasher.paths) != 0 {
				t.Fatal("failed merges must not trash inputs")
			}
			run := f.journaled(t, res.RunID)
			if run.Status != history.StatusFailed || run.Error == "" {
				t.Fatalf("unexpected journal entry %#v", run)
			}
			if (tt.wantCode == nil) != (run.ExitCode == nil) || (tt.wantCode != nil && *tt.wantCode != *run.ExitCode) {
				t.Fatalf("journaled exit code = %v, want %v", run.ExitCode, tt.wantCode)
			}
		})
	}
}

func TestRunAborted(t *testing.T) {
	f := newFixture(t, "a.mkv")
	f.merger.err = context.Canceled

	res := f.run(t, Request{Patterns: []string{"a.mkv"}, Delete: true})
	if !res.Aborted || res.Succeeded {
		t.Fatalf("unexpected result %#v", res)
	}
	if len(f.trasher.paths) != 0 {
		t.Fatal("aborted merges must not trash inputs")
	}
	if run := f.journaled(t, res.RunID); run.Status != history.StatusAborted {
		t.Fatalf("unexpected journal status %q", run.Status)
	}
}

func TestRunCanceledBeforeLaunch(t *testing.T) {
	f := newFixture(t, "a.mkv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.runner.Run(ctx, Request{Patterns: []string{"a.mkv"}, Cwd: f.dir})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !res.Aborted || f.merger.calls != 0 {
		t.Fatalf("expected abort before launch, result %#v calls %d", res, f.merger.calls)
	}
	if run := f.journaled(t, res.RunID); run.Status != history.StatusAborted {
		t.Fatalf("unexpected journal status %q", run.Status)
	}
}

func TestRunLockHeld(t *testing.T) {
	f := newFixture(t, "a.mkv")
	if err := os.MkdirAll(filepath.Dir(f.runner.cfg.LockPath()), 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(f.runner.cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = f.runner.Run(context.Background(), Request{Patterns: []string{"a.mkv"}, Cwd: f.dir})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if f.merger.calls != 0 {
		t.Fatal("merger should not run while locked")
	}
}

func TestRunUnwritableOutputDirectory(t *testing.T) {
	f := newFixture(t, "a.mkv")
	_, err := f.runner.Run(context.Background(), Request{
		Patterns: []string{"a.mkv"},
		Output:   filepath.Join(f.dir, "missing", "out.mkv"),
		Cwd:      f.dir,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.merger.calls != 0 {
		t.Fatal("merger should not run")
	}
}

func TestRunIncludePatternsFromConfig(t *testing.T) {
	f := newFixture(t, "a.mkv", "a-en.srt", "season/b.mkv", "season/b-en.srt")
	f.runner.cfg.Merge.IncludePatterns = []string{"*.srt"}

	f.run(t, Request{Patterns: []string{"a.mkv", "season"}})
	want := []string{"a.mkv", "a-en.srt", filepath.Join("season", "b-en.srt")}
	if got := f.merger.plan.Paths(); !slices.Equal(got, want) {
		t.Fatalf("paths = %q, want %q", got, want)
	}
}

func TestRunWithoutJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteFiles(t, filepath.Join(testsupport.BaseDir(cfg), "work"), "a.mkv")
	merger := &stubMerger{}
	runner := New(cfg, WithMerger(merger), WithOutput(&bytes.Buffer{}))

	res, err := runner.Run(context.Background(), Request{Patterns: []string{"a.mkv"}, Cwd: dir})
	if err != nil || !res.Succeeded {
		t.Fatalf("Run = %#v, %v", res, err)
	}
}

func TestRunEndToEndWithScript(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMkvmergeScript(
		"out=''\nwhile [ $# -gt 0 ]; do if [ \"$1\" = -o ]; then out=$2; fi; shift; done\n"+
			"printf 'Progress: 40%%\\rProgress: 100%%\\r\\n'\n: > \"$out\"\n",
	))
	dir := testsupport.WriteFiles(t, filepath.Join(testsupport.BaseDir(cfg), "work"), "Show.mkv", "Show-en.srt")
	var last int
	runner := New(cfg, WithOutput(&bytes.Buffer{}), WithTrasher(&recordingTrasher{}))

	res, err := runner.Run(context.Background(), Request{
		Patterns: []string{"*"},
		Cwd:      dir,
		Progress: func(p int) { last = p },
	})
	if err != nil || !res.Succeeded {
		t.Fatalf("Run = %#v, %v", res, err)
	}
	if last != 100 {
		t.Fatalf("last progress = %d", last)
	}
	testsupport.AssertExists(t, filepath.Join(dir, "Show-merged.mkv"))
}

func ptr(v int) *int { return &v }
