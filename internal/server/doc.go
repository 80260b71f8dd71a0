// Package server exposes the review dashboard over HTTP: registration and
// session auth, submission listing and mutation, audio upload intake, zip
// export of approved files, topic suggestions, and a websocket change feed.
package server
