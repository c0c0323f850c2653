package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		startedRaw  string
		finishedRaw sql.NullString
		output      sql.NullString
		status      string
		exitCode    sql.NullInt64
		errorText   sql.NullString
		dryRun      int
		inputCount  int
	)
	if err := scanner.Scan(&id, &startedRaw, &finishedRaw, &output, &status, &exitCode, &errorText, &dryRun, &inputCount); err != nil {
		return nil, err
	}

	run := &Run{
		ID:         id,
		Output:     output.String,
		Status:     Status(status),
		Error:      errorText.String,
		DryRun:     dryRun != 0,
		InputCount: inputCount,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
