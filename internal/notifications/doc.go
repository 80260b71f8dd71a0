// Package notifications delivers operator alerts through ntfy push topics.
// When no topic is configured every notification is a silent no-op.
package notifications
