package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"automux/internal/logging"
)

// progressReporter renders mkvmerge progress percentages.
type progressReporter interface {
	Update(percent int)
	Finish(completed bool)
}

// newProgressReporter draws a bar on terminals and falls back to sampled
// log lines everywhere else.
func newProgressReporter(w io.Writer, logger *slog.Logger, everyPercent int) progressReporter {
	if isTerminal(w) {
		return newBarReporter(w)
	}
	return &logReporter{
		logger:  logging.NewComponentLogger(logger, "mkvmerge"),
		sampler: logging.NewProgressSampler(everyPercent),
	}
}

type barReporter struct {
	w       io.Writer
	bar     *progressbar.ProgressBar
	started bool
}

func newBarReporter(w io.Writer) *barReporter {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("mkvmerge"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionEnableColorCodes(true),
	)
	return &barReporter{w: w, bar: bar}
}

func (b *barReporter) Update(percent int) {
	b.started = true
	_ = b.bar.Set(percent)
}

func (b *barReporter) Finish(completed bool) {
	if !b.started {
		return
	}
	if completed {
		_ = b.bar.Finish()
	} else {
		_ = b.bar.Exit()
	}
	fmt.Fprintln(b.w)
}

type logReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (l *logReporter) Update(percent int) {
	if l.sampler.ShouldLog(percent) {
		l.logger.Info("merge progress", logging.Int("percent", percent))
	}
}

func (l *logReporter) Finish(bool) {
	l.sampler.Reset()
}
