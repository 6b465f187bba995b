// Package sqlite implements the store interfaces using SQLite via the
// pure-Go modernc.org/sqlite driver. The schema is managed by embedded
// goose migrations applied at process start.
package sqlite
