package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoutdesk/internal/config"
)

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHOUTDESK_BIND",
		"SHOUTDESK_DATA_DIR",
		"SHOUTDESK_SESSION_SECRET",
		"SHOUTDESK_LLM_API_KEY",
		"SHOUTDESK_NTFY_TOPIC",
		"OPENROUTER_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultsExpandPathsAndHonorEnvSecret(t *testing.T) {
	clearOverrides(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SHOUTDESK_SESSION_SECRET", "0123456789abcdef")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "shoutdesk")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.UploadsDir != filepath.Join(wantData, "uploads") {
		t.Fatalf("unexpected uploads dir: %q", cfg.Paths.UploadsDir)
	}
	if cfg.Paths.SessionsDir != filepath.Join(wantData, "sessions") {
		t.Fatalf("unexpected sessions dir: %q", cfg.Paths.SessionsDir)
	}
	if cfg.Paths.Bind != "127.0.0.1:3000" {
		t.Fatalf("unexpected bind: %q", cfg.Paths.Bind)
	}
	if cfg.Sessions.Secret != "0123456789abcdef" {
		t.Fatalf("expected session secret from env, got %q", cfg.Sessions.Secret)
	}
	if cfg.Encoder.Binary != "ffmpeg" {
		t.Fatalf("unexpected encoder binary: %q", cfg.Encoder.Binary)
	}
	if cfg.Publish.PollAttempts != 45 {
		t.Fatalf("unexpected poll attempts: %d", cfg.Publish.PollAttempts)
	}
	if cfg.Publish.PollIntervalSeconds != 4 {
		t.Fatalf("unexpected poll interval: %d", cfg.Publish.PollIntervalSeconds)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	clearOverrides(t)
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected error when session secret missing")
	}
	if !strings.Contains(err.Error(), "sessions.secret") {
		t.Fatalf("unexpected error: %v", err)
	}
	// The hint must name a real subcommand.
	if !strings.Contains(err.Error(), "shoutdesk config init") {
		t.Fatalf("expected hint to name 'shoutdesk config init', got: %v", err)
	}
}

func TestLoadReadsFileAndEnvWins(t *testing.T) {
	clearOverrides(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
bind = "127.0.0.1:9999"
data_dir = "` + dir + `/data"

[sessions]
secret = "file-secret-0123456789"

[publish]
poll_attempts = 3
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SHOUTDESK_BIND", "0.0.0.0:8080")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Paths.Bind != "0.0.0.0:8080" {
		t.Fatalf("expected env bind to win, got %q", cfg.Paths.Bind)
	}
	if cfg.Sessions.Secret != "file-secret-0123456789" {
		t.Fatalf("unexpected secret: %q", cfg.Sessions.Secret)
	}
	if cfg.Publish.PollAttempts != 3 {
		t.Fatalf("unexpected poll attempts: %d", cfg.Publish.PollAttempts)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[sessions]") {
		t.Fatal("expected sample to include sessions section")
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
