// Package database opens and migrates the engine's own metadata store, a
// SQLite file holding registered connections and extracted schema metadata.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the metadata store at path, creating the file if needed.
// Foreign keys are switched on so connection deletes cascade into the
// metadata tables.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}

	// SQLite allows one writer; a small pool avoids lock contention.
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping metadata store: %w", err)
	}
	return db, nil
}
