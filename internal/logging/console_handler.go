package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleTimeLayout keeps terminal lines short; the JSON handler carries
// full timestamps.
const consoleTimeLayout = "15:04:05"

// consoleHandler renders `time LEVEL component: message key=value ...`.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	preset    []field
	groups    []string
	addSource bool
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFields(fields, h.groups, attr)
		return true
	})
	component, fields := takeComponent(fields)

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s ", when.Local().Format(consoleTimeLayout), levelLabel(record.Level))
	if component != "" {
		buf.WriteString(component + ": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)
	if src := record.Source(); h.addSource && src != nil {
		fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
	}
	for _, f := range fields {
		fmt.Fprintf(&buf, " %s=%s", f.key, renderValue(f.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		clone.preset = appendFields(clone.preset, h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// takeComponent removes every component field and returns the first value.
func takeComponent(fields []field) (string, []field) {
	var component string
	kept := fields[:0]
	for _, f := range fields {
		if f.key != FieldComponent {
			kept = append(kept, f)
			continue
		}
		if component == "" {
			component = f.value.String()
		}
	}
	return component, kept
}

func appendFields(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(append([]string(nil), groups...), attr.Key)
		}
		for _, child := range attr.Value.Group() {
			dst = appendFields(dst, groups, child)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, field{key: key, value: attr.Value})
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindBool, slog.KindInt64, slog.KindUint64, slog.KindDuration:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		s = v.Time().Local().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\r=\"") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
