package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at the given path and applies
// connection pragmas. busyTimeoutMillis bounds how long a statement waits on
// a locked database, so concurrent writers wait rather than fail outright.
func Open(path string, busyTimeoutMillis int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis),
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	// The driver serializes writers anyway; a single connection avoids
	// SQLITE_BUSY between pooled connections of this process.
	db.SetMaxOpenConns(1)

	return db, nil
}
