// Package config loads, normalizes, and validates shoutdesk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays SHOUTDESK_* environment
// variables. The Config type centralizes every knob the server and the
// publish workflow need, so data directories and service credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
