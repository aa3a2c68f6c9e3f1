package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meta.db")

	require.NoError(t, RunMigrations(ctx, path, zap.NewNop()))
	// second run is a no-op
	require.NoError(t, RunMigrations(ctx, path, zap.NewNop()))

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"database_connections", "table_metadata", "column_metadata"} {
		var n int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meta.db")
	require.NoError(t, RunMigrations(ctx, path, zap.NewNop()))

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx,
		"INSERT INTO database_connections (name, connection_url) VALUES ('demo', 'sqlite://demo.db')")
	require.NoError(t, err)
	res, err := db.ExecContext(ctx,
		"INSERT INTO table_metadata (db_name, schema_name, table_name, table_type) VALUES ('demo', 'main', 'users', 'table')")
	require.NoError(t, err)
	tableID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		"INSERT INTO column_metadata (table_metadata_id, column_name, data_type, position) VALUES (?, 'id', 'INTEGER', 1)",
		tableID)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "DELETE FROM database_connections WHERE name = 'demo'")
	require.NoError(t, err)

	var tables, columns int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM table_metadata").Scan(&tables))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM column_metadata").Scan(&columns))
	assert.Equal(t, 0, tables)
	assert.Equal(t, 0, columns)
}
