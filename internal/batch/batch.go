package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"automux/internal/config"
	"automux/internal/history"
	"automux/internal/inference"
	"automux/internal/inputs"
	"automux/internal/language"
	"automux/internal/logging"
	"automux/internal/mkvmerge"
	"automux/internal/preflight"
	"automux/internal/progress"
	"automux/internal/services"
	"automux/internal/trash"
)

var (
	// ErrOutputExists reports that the generated output name is taken.
	ErrOutputExists = errors.New("output file already exists")
	// ErrBusy reports that another merge holds the lock.
	ErrBusy = errors.New("another merge is already running")
)

// Merger runs a merge plan. *mkvmerge.Runner implements it.
type Merger interface {
	Run(ctx context.Context, binary string, plan mkvmerge.Plan, onProgress func(int)) error
}

// Journal records runs. *history.Store implements it.
type Journal interface {
	Begin(ctx context.Context, run *history.Run) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
	MarkTrashed(ctx context.Context, id, path string) error
}

// Request describes one invocation.
type Request struct {
	// Patterns are input files, globs, or directories.
	Patterns []string
	// Includes are globs applied inside the working directory and every
	// directory named by Patterns. Nil falls back to merge.include_patterns.
	Includes []string
	Output   string
	DryRun   bool
	Delete   bool
	// Cwd is the directory patterns are relative to; empty uses the process
	// working directory.
	Cwd      string
	Progress func(percent int)
}

// Result summarizes a finished invocation.
type Result struct {
	RunID     string
	Plan      mkvmerge.Plan
	DryRun    bool
	Succeeded bool
	Aborted   bool
	ExitCode  *int
	// Errors are user-facing failure lines, most specific first.
	Errors  []string
	Err     error
	Trashed []string
}

// Option configures the runner.
type Option func(*Runner)

// WithMerger injects the merge implementation.
func WithMerger(m Merger) Option {
	return func(r *Runner) {
		if m != nil {
			r.merger = m
		}
	}
}

// WithTrasher injects the trash implementation used for real runs.
func WithTrasher(t trash.Trasher) Option {
	return func(r *Runner) {
		if t != nil {
			r.trasher = t
		}
	}
}

// WithJournal enables run journaling.
func WithJournal(j Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

// WithOutput sets where user-facing progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "batch")
	}
}

// WithLanguageTable overrides the language table used for inference.
func WithLanguageTable(table language.Table) Option {
	return func(r *Runner) {
		if table != nil {
			r.table = table
		}
	}
}

// Runner executes batch requests against one configuration.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	merger  Merger
	trasher trash.Trasher
	journal Journal
	table   language.Table
	out     io.Writer
}

// New constructs a runner. Without options it uses the real mkvmerge runner,
// the platform trash, no journal, and os.Stdout.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(nil, "batch"),
		table:  language.NewTable(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.merger == nil {
		r.merger = mkvmerge.NewRunner(
			mkvmerge.WithAcceptWarnings(cfg.Mkvmerge.AcceptWarnings),
			mkvmerge.WithLogger(r.logger),
		)
	}
	if r.trasher == nil {
		t, err := trash.New(trash.Options{})
		if err != nil {
			t = trash.Unsupported{}
		}
		r.trasher = t
	}
	return r
}

// Run executes req. The returned error covers setup failures; the merge
// outcome itself is in Result.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	res := Result{RunID: uuid.NewString(), DryRun: req.DryRun}
	ctx = services.WithRunID(ctx, res.RunID)
	logger := logging.WithContext(ctx, r.logger)

	cwd := req.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return res, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	includes := req.Includes
	if includes == nil {
		includes = r.cfg.Merge.IncludePatterns
	}
	files, err := inputs.Resolve(cwd, req.Patterns, includes)
	if err != nil {
		return res, err
	}

	plan, err := r.plan(services.WithStage(ctx, "plan"), cwd, req, files)
	res.Plan = plan
	if err != nil {
		return res, err
	}

	record := r.begin(ctx, logger, res.RunID, plan, req.DryRun)
	finish := func(outcome history.Outcome) {
		if record {
			r.finish(ctx, logger, res.RunID, outcome)
		}
	}

	if req.DryRun {
		if req.Delete {
			res.Trashed = r.trash(ctx, logger, trash.Noop{}, res.RunID, cwd, files, false)
		}
		res.Succeeded = true
		finish(history.Outcome{Status: history.StatusDryRun})
		return res, nil
	}

	unlock, err := r.lock()
	if err != nil {
		finish(history.Outcome{Status: history.StatusFailed, Error: err.Error()})
		return res, err
	}
	defer unlock()

	if check := preflight.CheckOutput(absolute(cwd, plan.Output)); !check.Passed {
		err := services.Wrap(services.ErrValidation, "preflight", "output", check.Detail, nil)
		finish(history.Outcome{Status: history.StatusFailed, Error: err.Error()})
		return res, err
	}

	if ctx.Err() != nil {
		res.Aborted = true
		finish(history.Outcome{Status: history.StatusAborted})
		return res, nil
	}

	mergeCtx := services.WithStage(ctx, "merge")
	logging.WithContext(mergeCtx, r.logger).Info("merge started",
		logging.String("output", plan.Output),
		logging.Int("inputs", len(plan.Tracks)),
	)
	runErr := r.merger.Run(mergeCtx, r.cfg.MkvmergeBinary(), plan, req.Progress)
	r.classify(&res, runErr)

	switch {
	case res.Aborted:
		logger.Info("merge aborted")
		finish(history.Outcome{Status: history.StatusAborted})
		return res, nil
	case !res.Succeeded:
		logging.ErrorWithContext(logger, "merge failed", services.FailureKind(runErr),
			"run with --log-level debug to see the mkvmerge command line",
			logging.Error(runErr),
		)
		finish(history.Outcome{Status: history.StatusFailed, ExitCode: res.ExitCode, Error: runErr.Error()})
		return res, nil
	}

	logger.Info("merge completed", logging.String("output", plan.Output))
	if req.Delete {
		res.Trashed = r.trash(ctx, logger, r.trasher, res.RunID, cwd, files, record)
	}
	finish(history.Outcome{Status: history.StatusSucceeded, ExitCode: res.ExitCode})
	return res, nil
}

func (r *Runner) plan(ctx context.Context, cwd string, req Request, files []inputs.File) (mkvmerge.Plan, error) {
	logger := logging.WithContext(ctx, r.logger)
	plan := mkvmerge.Plan{Dir: cwd, Output: req.Output}

	if plan.Output == "" {
		name, ok := mkvmerge.DefaultOutput(inputs.Paths(files), r.cfg.Merge.OutputSuffix)
		if ok {
			if _, err := os.Lstat(absolute(cwd, name)); err == nil {
				return plan, services.Wrap(services.ErrValidation, "plan", "output", name, ErrOutputExists)
			}
			plan.Output = name
		} else {
			logging.WarnWithContext(logger, "no output name could be derived", "output_unset",
				"pass -o to choose the merged file name",
			)
		}
	}

	opts := inference.Options{ForcedMarker: r.cfg.ForcedMarkerMode()}
	for _, f := range files {
		fmt.Fprintln(r.out, "including file", f.Path)
		meta, err := inference.Resolve(absolute(cwd, f.Path), r.table, opts)
		if err != nil {
			logging.WarnWithContext(logger, "metadata inference failed", "inference_failed",
				"the track is merged without inferred metadata",
				logging.String("path", f.Path),
				logging.Error(err),
			)
		}
		logger.Debug("track metadata",
			logging.String("path", f.Path),
			logging.String("language", meta.Language),
			logging.Bool("forced", meta.Forced),
		)
		plan.Tracks = append(plan.Tracks, mkvmerge.Track{Path: f.Path, Language: meta.Language, Forced: meta.Forced})
	}
	return plan, nil
}

func (r *Runner) lock() (func(), error) {
	path := r.cfg.LockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire merge lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "lock", "", path, ErrBusy)
	}
	return func() { _ = lock.Unlock() }, nil
}

// classify maps the merge error to the result fields and user-facing lines.
func (r *Runner) classify(res *Result, err error) {
	res.Err = err
	switch {
	case err == nil:
		res.Succeeded = true
		zero := 0
		res.ExitCode = &zero
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Aborted = true
		return
	}

	var exitErr *mkvmerge.ExitError
	if errors.As(err, &exitErr) && exitErr.Code >= 0 {
		code := exitErr.Code
		res.ExitCode = &code
	}
	var streamErr *progress.StreamError
	switch {
	case errors.As(err, &streamErr):
		res.Errors = []string{streamErr.Message, "mkvmerge failed"}
	case res.ExitCode != nil:
		res.Errors = []string{fmt.Sprintf("mkvmerge failed with the exit code %d", *res.ExitCode)}
	case exitErr != nil:
		res.Errors = []string{"mkvmerge failed"}
	default:
		detail := err.Error()
		if errors.Is(err, mkvmerge.ErrLaunch) {
			detail = strings.TrimPrefix(detail, mkvmerge.ErrLaunch.Error()+": ")
		}
		res.Errors = []string{detail, "mkvmerge failed"}
	}
}

func (r *Runner) trash(ctx context.Context, logger *slog.Logger, t trash.Trasher, runID, cwd string, files []inputs.File, record bool) []string {
	display := make(map[string]string, len(files))
	paths := make([]string, 0, len(files))
	for _, f := range files {
		abs := absolute(cwd, f.Path)
		display[abs] = f.Path
		paths = append(paths, abs)
	}

	var trashed []string
	for _, abs := range trash.Expand(paths) {
		shown, ok := display[abs]
		if !ok {
			shown = relative(cwd, abs)
		}
		fmt.Fprintf(r.out, "moving %s to trash\n", shown)
		if err := t.Trash(abs); err != nil {
			logging.WarnWithContext(logger, "move to trash failed", "trash_failed",
				"remove the file manually",
				logging.String("path", shown),
				logging.Error(err),
			)
			continue
		}
		trashed = append(trashed, shown)
		if record && ok {
			if err := r.journal.MarkTrashed(context.WithoutCancel(ctx), runID, shown); err != nil {
				logger.Warn("journal update failed", logging.Error(err))
			}
		}
	}
	return trashed
}

func (r *Runner) begin(ctx context.Context, logger *slog.Logger, id string, plan mkvmerge.Plan, dryRun bool) bool {
	if r.journal == nil {
		return false
	}
	run := &history.Run{ID: id, Output: plan.Output, DryRun: dryRun}
	for _, track := range plan.Tracks {
		run.Inputs = append(run.Inputs, history.Input{Path: track.Path, Language: track.Language, Forced: track.Forced})
	}
	if err := r.journal.Begin(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "run journal unavailable", "history_failed",
			"set history.enabled = false to silence this warning",
			logging.Error(err),
		)
		return false
	}
	return true
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, id string, outcome history.Outcome) {
	if err := r.journal.Finish(context.WithoutCancel(ctx), id, outcome); err != nil {
		logger.Warn("journal update failed", logging.Error(err))
	}
}

func absolute(cwd, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

func relative(cwd, p string) string {
	if rel, err := filepath.Rel(cwd, p); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return p
}
