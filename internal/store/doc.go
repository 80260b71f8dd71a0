// Package store persists submissions and staff accounts in SQLite.
//
// The Store manages the database connection, schema initialization, and every
// read/write the review API performs. Submissions are keyed by filename; no
// surrogate identifier leaves this package. The database lives alongside the
// uploads directory under the configured data root.
//
// Treat this package as the single source of truth for submission semantics;
// when you add new statuses or columns, update schemaSQL and bump schemaVersion.
package store
