// Package logging wires slog handlers for shoutdesk.
//
// It provides console and JSON output, mirrors logs into the configured log
// directory, and exposes small attr helpers so call sites stay terse.
package logging
