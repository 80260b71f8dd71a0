package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSessions(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSessions() error {
	if c.Sessions.Secret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/shoutdesk/config.toml"
		}
		return fmt.Errorf("sessions.secret is required. Set SHOUTDESK_SESSION_SECRET env var or edit %s (create with 'shoutdesk config init')", defaultPath)
	}
	if len(c.Sessions.Secret) < 16 {
		return errors.New("sessions.secret must be at least 16 characters")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.Binary == "" {
		return errors.New("encoder.binary must be set")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.PollAttempts <= 0 {
		return errors.New("publish.poll_attempts must be positive")
	}
	if c.Publish.PollIntervalSeconds <= 0 {
		return errors.New("publish.poll_interval_seconds must be positive")
	}
	return nil
}
