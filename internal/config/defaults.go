package config

const (
	defaultInputDir  = "~/scribe/input"
	defaultOutputDir = "~/scribe/output"
	defaultWorkDir   = "~/.local/share/scribe/work"
	defaultLogDir    = "~/.local/share/scribe/logs"

	defaultTranscriberModel   = "large-v3"
	defaultTranscriberVAD     = "silero"
	defaultTranscriberTimeout = 3600

	defaultMaxCollisionAttempts = 1000
	defaultMaxConcurrent        = 2

	defaultWatcherSettleDelayMS = 500

	defaultNotifyRequestTimeout = 10

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// defaultMediaExtensions mirrors the video and audio formats the pipeline accepts.
var defaultMediaExtensions = []string{
	".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v",
	".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".wma",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Transcriber: Transcriber{
			Model:          defaultTranscriberModel,
			VADMethod:      defaultTranscriberVAD,
			TimeoutSeconds: defaultTranscriberTimeout,
			ExtractAudio:   true,
		},
		Ingest: Ingest{
			MediaExtensions:      append([]string(nil), defaultMediaExtensions...),
			MaxCollisionAttempts: defaultMaxCollisionAttempts,
			MaxConcurrent:        defaultMaxConcurrent,
		},
		Watcher: Watcher{
			Enabled:       true,
			SettleDelayMS: defaultWatcherSettleDelayMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completions:    true,
			Errors:         true,
			Queue:          true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
