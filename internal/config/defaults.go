package config

const (
	defaultStateDir      = "~/.local/share/automux"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultOutputSuffix  = "-merged"
	defaultForcedMarker  = "off"
	defaultMkvmergeName  = "mkvmerge"
	windowsMkvmergePath  = `${PROGRAMFILES}\MKVToolNix\mkvmerge.exe`
	mkvmergeEnvVar       = "AUTOMUX_MKVMERGE"
	historyDatabaseName  = "history.db"
	mergeLockName        = "merge.lock"
	defaultHistoryLimit  = 20
	defaultProgressEvery = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Merge: Merge{
			OutputSuffix: defaultOutputSuffix,
		},
		Inference: Inference{
			ForcedMarker: defaultForcedMarker,
		},
		History: History{
			Enabled: true,
			Limit:   defaultHistoryLimit,
		},
		Logging: Logging{
			Format:               defaultLogFormat,
			Level:                defaultLogLevel,
			ProgressEveryPercent: defaultProgressEvery,
		},
	}
}
