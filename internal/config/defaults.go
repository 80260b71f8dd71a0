package config

const (
	defaultDataDir               = "~/.local/share/shoutdesk"
	defaultBind                  = "127.0.0.1:3000"
	defaultSessionTTLMinutes     = 720
	defaultEncoderBinary         = "ffmpeg"
	defaultEncoderBitrate        = "128k"
	defaultEncoderTimeoutSeconds = 300
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds     = 30
	defaultNtfyRequestTimeout    = 10
	defaultPollIntervalSeconds   = 4
	defaultPollAttempts          = 45
	defaultSettleSeconds         = 5
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			Bind:    defaultBind,
		},
		Sessions: Sessions{
			TTLMinutes: defaultSessionTTLMinutes,
		},
		Encoder: Encoder{
			Binary:         defaultEncoderBinary,
			Bitrate:        defaultEncoderBitrate,
			TimeoutSeconds: defaultEncoderTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Publish: Publish{
			PollIntervalSeconds: defaultPollIntervalSeconds,
			PollAttempts:        defaultPollAttempts,
			SettleSeconds:       defaultSettleSeconds,
			Headless:            true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
