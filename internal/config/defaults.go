package config

const (
	defaultDataDir                = "~/.local/share/tsumugi"
	defaultLogDir                 = "~/.local/share/tsumugi/logs"
	defaultDeepSeekBaseURL        = "https://api.deepseek.com"
	defaultDeepSeekModel          = "deepseek-chat"
	defaultDeepSeekTimeoutSeconds = 300
	defaultSourceTimeoutSeconds   = 60
	defaultPollIntervalMS         = 200
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		DeepSeek: DeepSeek{
			BaseURL:        defaultDeepSeekBaseURL,
			Model:          defaultDeepSeekModel,
			TimeoutSeconds: defaultDeepSeekTimeoutSeconds,
		},
		Source: Source{
			TimeoutSeconds: defaultSourceTimeoutSeconds,
		},
		Reader: Reader{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			ChapterDone:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
