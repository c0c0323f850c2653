package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"automux/internal/deps"
	"automux/internal/trash"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := accessReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutput verifies that output can be created: its directory must be
// writable and the file itself must not be a directory.
func CheckOutput(output string) Result {
	const name = "Output"
	if strings.TrimSpace(output) == "" {
		return Result{Name: name, Passed: true, Detail: "chosen by mkvmerge"}
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", output)}
	}
	dir := filepath.Dir(output)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	res := CheckDirectoryAccess(name, dir)
	if res.Passed {
		res.Detail = fmt.Sprintf("%s (writable)", output)
	}
	return res
}

// CheckMkvmerge reports whether the mkvmerge binary resolves and runs.
func CheckMkvmerge(ctx context.Context, binary string) Result {
	status := deps.CheckBinaries(ctx, []deps.Requirement{deps.MkvmergeRequirement(binary)})[0]
	res := Result{Name: status.Name, Passed: status.Available}
	switch {
	case !status.Available:
		res.Detail = status.Detail
	case status.Version != "":
		res.Detail = fmt.Sprintf("%s (%s)", status.Command, status.Version)
	case status.Detail != "":
		res.Detail = fmt.Sprintf("%s (%s)", status.Command, status.Detail)
	default:
		res.Detail = status.Command
	}
	return res
}

// CheckTrash reports whether inputs can be moved to the trash.
func CheckTrash(t trash.Trasher) Result {
	const name = "Trash"
	switch v := t.(type) {
	case nil:
		return Result{Name: name, Detail: "not configured"}
	case trash.Unsupported:
		return Result{Name: name, Detail: trash.ErrUnsupported.Error()}
	case *trash.XDG:
		return Result{Name: name, Passed: true, Detail: v.Dir}
	case *trash.MacOS:
		return Result{Name: name, Passed: true, Detail: v.Dir}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%T", v)}
	}
}
