package mkvmerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"automux/internal/logging"
	"automux/internal/progress"
	"automux/internal/services"
)

// ExitWarnings is the mkvmerge exit status for "finished with warnings".
const ExitWarnings = 1

// DefaultGracePeriod is how long an interrupted mkvmerge may take to exit
// before it is killed.
const DefaultGracePeriod = 5 * time.Second

// ErrLaunch reports that mkvmerge could not be started.
var ErrLaunch = errors.New("mkvmerge launch failed")

// ExitError reports a non-zero mkvmerge exit. Code is -1 when the process
// ended without an exit status (for example, killed by a signal).
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		if e.Err != nil {
			return fmt.Sprintf("mkvmerge failed: %v", e.Err)
		}
		return "mkvmerge failed"
	}
	return fmt.Sprintf("mkvmerge exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func (e *ExitError) Is(target error) bool { return target == services.ErrExternalTool }

// Process is a started mkvmerge.
type Process interface {
	Stdout() io.Reader
	Wait() error
}

// Command is one process invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
}

// Launcher starts mkvmerge. Implementations must stop the process when ctx is
// canceled.
type Launcher interface {
	Launch(ctx context.Context, cmd Command) (Process, error)
}

// ExecLauncher launches real processes. Cancellation sends an interrupt
// (a kill on Windows) and escalates to a kill after GracePeriod.
type ExecLauncher struct {
	GracePeriod time.Duration
	// Stderr receives mkvmerge's standard error. Nil discards it.
	Stderr io.Writer
}

func (l ExecLauncher) Launch(ctx context.Context, c Command) (Process, error) {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = l.GracePeriod
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultGracePeriod
	}
	cmd.Stderr = l.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &execProcess{cmd: cmd, stdout: stdout}, nil
}

func interrupt(p *os.Process) error {
	if p == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return p.Kill()
	}
	return p.Signal(os.Interrupt)
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Wait() error { return p.cmd.Wait() }

// Option configures the runner.
type Option func(*Runner)

// WithLauncher injects a custom launcher (primarily for tests).
func WithLauncher(l Launcher) Option {
	return func(r *Runner) {
		if l != nil {
			r.launcher = l
		}
	}
}

// WithAcceptWarnings treats exit status 1 as success.
func WithAcceptWarnings(accept bool) Option {
	return func(r *Runner) {
		r.acceptWarnings = accept
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "mkvmerge")
	}
}

// Runner executes merge plans.
type Runner struct {
	launcher       Launcher
	acceptWarnings bool
	logger         *slog.Logger
}

// NewRunner constructs a runner backed by ExecLauncher unless overridden.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		launcher: ExecLauncher{},
		logger:   logging.NewComponentLogger(nil, "mkvmerge"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run launches mkvmerge for plan and blocks until it exits. onProgress
// receives each percent from the progress adapter and may be nil.
//
// Errors: ErrLaunch when the process cannot start, a wrapped
// *progress.StreamError when mkvmerge prints an Error line (joined with the
// *ExitError when it also exits non-zero), *ExitError for a non-zero exit,
// and the context error when ctx is canceled.
func (r *Runner) Run(ctx context.Context, binary string, plan Plan, onProgress func(int)) error {
	if strings.TrimSpace(binary) == "" {
		return fmt.Errorf("%w: %w: binary not configured", ErrLaunch, services.ErrConfiguration)
	}
	argv := plan.Command(binary)
	cmd := Command{Binary: argv[0], Args: argv[1:], Dir: plan.Dir}
	r.logger.Debug("launching mkvmerge",
		logging.Strings("command", argv),
		logging.String("dir", cmd.Dir),
	)

	proc, err := r.launcher.Launch(ctx, cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("mkvmerge: %w", ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	streamErr := r.follow(ctx, proc.Stdout(), onProgress)
	// Unread output would block mkvmerge on a full pipe.
	_, _ = io.Copy(io.Discard, proc.Stdout())
	waitErr := proc.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("mkvmerge: %w", ctxErr)
	}
	exitErr := r.exitError(waitErr, plan)
	if streamErr != nil {
		err := fmt.Errorf("%w: %w", services.ErrExternalTool, streamErr)
		if exitErr != nil {
			return errors.Join(err, exitErr)
		}
		return err
	}
	if exitErr != nil {
		return exitErr
	}
	return nil
}

// exitError classifies the Wait result. It returns nil for a clean exit and
// for exit status 1 when warnings are accepted.
func (r *Runner) exitError(waitErr error, plan Plan) *ExitError {
	if waitErr == nil {
		return nil
	}
	var coded interface{ ExitCode() int }
	if errors.As(waitErr, &coded) && coded.ExitCode() >= 0 {
		code := coded.ExitCode()
		if code == ExitWarnings && r.acceptWarnings {
			logging.WarnWithContext(r.logger, "mkvmerge finished with warnings", "mkvmerge_warnings",
				"inspect the output file; set mkvmerge.accept_warnings = false to treat warnings as failures",
				logging.String("output", plan.Output),
			)
			return nil
		}
		return &ExitError{Code: code, Err: waitErr}
	}
	return &ExitError{Code: -1, Err: waitErr}
}

func (r *Runner) follow(ctx context.Context, stdout io.Reader, onProgress func(int)) error {
	adapter, err := progress.New(stdout)
	if err != nil {
		return err
	}
	for value := range adapter.Values() {
		if ctx.Err() != nil {
			break
		}
		if onProgress != nil {
			onProgress(value)
		}
	}
	r.logger.Debug("progress stream finished",
		logging.Int("percent", adapter.Percent()),
		logging.String("state", adapter.State().String()),
	)
	return adapter.Err()
}
