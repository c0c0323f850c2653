package progress

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strconv"
)

// High is the terminal percentage.
const High = 100

var (
	progressPattern = regexp.MustCompile(`Progress: (\d+)%`)
	errorPattern    = regexp.MustCompile(`(?m)^Error: (.*)$`)
)

// ErrStream marks every failure surfaced by an Adapter.
var ErrStream = errors.New("merge output stream error")

// StreamError carries the message of an `Error:` line.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	if e.Message == "" {
		return ErrStream.Error()
	}
	return e.Message
}

// Is lets errors.Is match ErrStream.
func (e *StreamError) Is(target error) bool {
	return target == ErrStream
}

// State is the adapter lifecycle position.
type State int

const (
	StateRunning State = iota
	StateCompleted
	StateFailed
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ResultKind tags a Result.
type ResultKind int

const (
	ResultValue ResultKind = iota
	ResultDone
	ResultError
)

// Result is the outcome of one Next call. Percent is set for ResultValue and
// Err for ResultError.
type Result struct {
	Kind    ResultKind
	Percent int
	Err     error
}

// Adapter turns merge output into a percentage sequence.
type Adapter struct {
	lines   *lineReader
	state   State
	current int
	target  int
	ended   bool
	err     error
}

// New wraps r and performs a priming read: lines are consumed until progress
// advances, an error line appears, or the stream ends. Nothing is emitted
// during priming. When priming hits an error line before any progress, New
// fails with that error.
func New(r io.Reader) (*Adapter, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no output stream", ErrStream)
	}
	a := &Adapter{lines: newLineReader(r)}
	a.fill()
	if a.state == StateFailed && a.target == 0 {
		return nil, a.err
	}
	return a, nil
}

// Len reports the terminal percentage, for sizing progress indicators.
func (a *Adapter) Len() int { return High }

// Percent returns the last produced value.
func (a *Adapter) Percent() int { return a.current }

// State returns the current lifecycle state.
func (a *Adapter) State() State { return a.state }

// Err returns the terminal error, if any.
func (a *Adapter) Err() error { return a.err }

// Next produces the next value, or reports that the sequence is done or
// failed. Failure is sticky.
func (a *Adapter) Next() Result {
	switch a.state {
	case StateFailed:
		return Result{Kind: ResultError, Err: a.err}
	case StateCompleted, StateExhausted:
		return Result{Kind: ResultDone}
	}

	if a.current >= High {
		a.state = StateExhausted
		return Result{Kind: ResultDone}
	}
	if a.current < a.target {
		return a.step()
	}

	a.fill()
	if a.current < a.target {
		return a.step()
	}
	if a.state == StateFailed {
		return Result{Kind: ResultError, Err: a.err}
	}
	// fill only returns without progress on failure or end of stream.
	a.current = High
	a.state = StateCompleted
	return Result{Kind: ResultValue, Percent: a.current}
}

// Values yields produced percentages until the sequence is done or fails.
// Check Err afterwards.
func (a *Adapter) Values() iter.Seq[int] {
	return func(yield func(int) bool) {
		for {
			res := a.Next()
			if res.Kind != ResultValue {
				return
			}
			if !yield(res.Percent) {
				return
			}
		}
	}
}

func (a *Adapter) step() Result {
	a.current++
	return Result{Kind: ResultValue, Percent: a.current}
}

// fill reads lines until the reported target moves past current, an error
// line is seen, or the stream ends.
func (a *Adapter) fill() {
	if a.ended {
		return
	}
	for {
		line, err := a.lines.next()
		if err != nil {
			a.ended = true
			if !errors.Is(err, io.EOF) {
				a.state = StateFailed
				a.err = fmt.Errorf("%w: read: %w", ErrStream, err)
			}
			return
		}

		if match := progressPattern.FindStringSubmatch(line); match != nil {
			value, convErr := strconv.Atoi(match[1])
			if convErr != nil || value > High {
				value = High
			}
			if value > a.target {
				a.target = value
			}
			if a.target > a.current {
				return
			}
			continue
		}

		if match := errorPattern.FindStringSubmatch(line); match != nil {
			a.ended = true
			a.state = StateFailed
			a.err = &StreamError{Message: match[1]}
			return
		}
	}
}
