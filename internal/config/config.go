package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	UploadsDir  string `toml:"uploads_dir"`
	SessionsDir string `toml:"sessions_dir"`
	LogDir      string `toml:"log_dir"`
	Bind        string `toml:"bind"`
}

// Sessions contains cookie session configuration.
type Sessions struct {
	Secret     string `toml:"secret"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// Encoder contains configuration for the external audio encoder.
type Encoder struct {
	Binary         string `toml:"binary"`
	Bitrate        string `toml:"bitrate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains connection settings for the topic suggestion service.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy operator alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Publish contains configuration for the browser publish workflow.
type Publish struct {
	TargetURL           string `toml:"target_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	PollAttempts        int    `toml:"poll_attempts"`
	SettleSeconds       int    `toml:"settle_seconds"`
	Headless            bool   `toml:"headless"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for shoutdesk.
//
// Configuration sections by subsystem:
//   - Paths: data root, uploads, session files, logs, HTTP bind address
//   - Sessions: cookie secret and time-to-live
//   - Encoder: external ffmpeg binary and output bitrate
//   - LLM: topic suggestion connection settings
//   - Notifications: ntfy operator alert settings
//   - Publish: target page URL and polling bounds for the publish workflow
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sessions      Sessions      `toml:"sessions"`
	Encoder       Encoder       `toml:"encoder"`
	LLM           LLM           `toml:"llm"`
	Notifications Notifications `toml:"notifications"`
	Publish       Publish       `toml:"publish"`
	Logging       Logging       `toml:"logging"`
}

// envOverrides maps the environment surface onto config fields. Environment
// values win over file values so deployments can keep secrets out of the file.
type envOverrides struct {
	Bind          string `envconfig:"BIND"`
	DataDir       string `envconfig:"DATA_DIR"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	LLMAPIKey     string `envconfig:"LLM_API_KEY"`
	NtfyTopic     string `envconfig:"NTFY_TOPIC"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shoutdesk/config.toml")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("shoutdesk", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if env.Bind != "" {
		c.Paths.Bind = env.Bind
	}
	if env.DataDir != "" {
		c.Paths.DataDir = env.DataDir
	}
	if env.SessionSecret != "" {
		c.Sessions.Secret = env.SessionSecret
	}
	if env.LLMAPIKey != "" {
		c.LLM.APIKey = env.LLMAPIKey
	}
	if env.NtfyTopic != "" {
		c.Notifications.NtfyTopic = env.NtfyTopic
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shoutdesk.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates every directory the process writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.UploadsDir, c.Paths.SessionsDir, c.Paths.LogDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
