package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

type statusStyle struct {
	label string
	color string
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func (k statusKind) style() statusStyle {
	if style, ok := statusStyles[k]; ok {
		return style
	}
	return statusStyles[statusInfo]
}

// paint wraps s in the kind's color when colorize is set.
func (k statusKind) paint(s string, colorize bool) string {
	if !colorize {
		return s
	}
	return k.style().color + s + ansiReset
}

// renderStatusLine renders "  label: [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kind.style().label + "]"
	if message != "" {
		status += " " + message
	}
	return kind.paint(fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status), colorize)
}

// statusCell renders a bare status label for table cells.
func statusCell(kind statusKind, colorize bool) string {
	return kind.paint(kind.style().label, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return []string{
		statusInfo.paint(line, colorize),
		statusInfo.paint(strings.Repeat("-", len(line)), colorize),
	}
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(writer)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
