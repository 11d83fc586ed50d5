// Package sqlite provides SQLite-backed persistence for accounts, tasks and
// revoked sessions.
//
// A single database file backs all three so ownership checks and account
// lookups share the same visibility boundaries.
package sqlite
