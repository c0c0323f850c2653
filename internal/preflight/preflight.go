package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"automux/internal/config"
	"automux/internal/services"
	"automux/internal/trash"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check relevant to cfg: state directory, mkvmerge,
// and the trash when inputs are deleted by default.
func RunAll(ctx context.Context, cfg *config.Config, trasher trash.Trasher) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckMkvmerge(ctx, cfg.MkvmergeBinary()),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Merge.DeleteInputs || trasher != nil {
		results = append(results, CheckTrash(trasher))
	}
	return results
}

// Err joins the failed results into one validation error, or returns nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "", strings.Join(failed, "; "), errors.New("preflight failed"))
}
