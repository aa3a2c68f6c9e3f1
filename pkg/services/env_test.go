package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/builtin"
	"github.com/queryforge-io/queryforge-engine/pkg/database"
	"github.com/queryforge-io/queryforge-engine/pkg/repositories"
)

// testEnv wires real components against temp SQLite files: the metadata
// store plus a target database to register and query.
type testEnv struct {
	factory  *dialect.Factory
	manager  *dialect.ConnectionManager
	conns    repositories.ConnectionRepository
	tables   repositories.TableMetadataRepository
	columns  repositories.ColumnMetadataRepository
	metadata MetadataService

	targetURL string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	storePath := filepath.Join(t.TempDir(), "meta.db")
	require.NoError(t, database.RunMigrations(ctx, storePath, logger))
	store, err := database.Open(ctx, storePath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry, err := builtin.NewRegistry()
	require.NoError(t, err)
	factory := dialect.NewFactory(registry, logger)
	manager := dialect.NewConnectionManager(factory, logger)
	t.Cleanup(func() { manager.CloseAll() })

	conns := repositories.NewConnectionRepository(store)
	tables := repositories.NewTableMetadataRepository(store)
	columns := repositories.NewColumnMetadataRepository(store)

	env := &testEnv{
		factory:  factory,
		manager:  manager,
		conns:    conns,
		tables:   tables,
		columns:  columns,
		metadata: NewMetadataService(factory, manager, tables, columns, logger),
	}
	env.targetURL = "sqlite://" + filepath.Join(t.TempDir(), "target.db")
	env.seedTarget(t)
	return env
}

// register inserts a connection row so metadata rows satisfy the FK.
func (env *testEnv) register(t *testing.T, name string) {
	t.Helper()
	_, err := env.conns.Create(context.Background(), name, env.targetURL)
	require.NoError(t, err)
}

// seedTarget creates a small shop schema in the target database.
func (env *testEnv) seedTarget(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	db, err := env.factory.CreateEngine(ctx, env.targetURL, true)
	require.NoError(t, err)
	defer db.Close()

	statements := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			age INTEGER,
			status TEXT DEFAULT 'active'
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			total REAL NOT NULL
		)`,
		`CREATE VIEW order_totals AS
			SELECT user_id, SUM(total) AS total FROM orders GROUP BY user_id`,
		`INSERT INTO users (id, email, age) VALUES
			(1, 'ada@example.com', 36),
			(2, 'grace@example.com', 45),
			(3, 'alan@example.com', NULL)`,
		`INSERT INTO orders (id, user_id, total) VALUES
			(1, 1, 19.99), (2, 1, 5.00), (3, 2, 100.50)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
}

// seedManyRows inserts n rows into a fresh table for truncation tests.
func seedManyRows(t *testing.T, db *sql.DB, n int) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE big (n INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO big (n) VALUES (?)")
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		_, err := stmt.ExecContext(ctx, i)
		require.NoError(t, err, fmt.Sprintf("row %d", i))
	}
	require.NoError(t, stmt.Close())
	require.NoError(t, tx.Commit())
}
