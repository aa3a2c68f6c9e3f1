package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDSN(t *testing.T) {
	a := New()

	dsn, err := a.DSN("sqlite:///var/data/app.db")
	require.NoError(t, err)
	assert.Equal(t, "/var/data/app.db", dsn)

	dsn, err = a.DSN("sqlite://relative.db")
	require.NoError(t, err)
	assert.Equal(t, "relative.db", dsn)

	_, err = a.DSN("sqlite://")
	assert.Error(t, err)

	_, err = a.DSN("mysql://h/db")
	assert.Error(t, err)
}

func TestNormalizeDataTypeAffinity(t *testing.T) {
	a := New()

	tests := []struct {
		raw  string
		want string
	}{
		{"INTEGER", "INTEGER"},
		{"bigint", "INTEGER"},
		{"tinyint(1)", "INTEGER"},
		{"VARCHAR(100)", "TEXT"},
		{"clob", "TEXT"},
		{"", "BLOB"},
		{"BLOB", "BLOB"},
		{"double precision", "REAL"},
		{"float", "REAL"},
		{"decimal(10,2)", "NUMERIC"},
		{"BOOLEAN", "NUMERIC"},
		{"DATETIME", "NUMERIC"},
		{"custom_type", "custom_type"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.NormalizeDataType(tt.raw), "raw=%q", tt.raw)
	}
}

func TestIntrospection(t *testing.T) {
	a := New()
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			age INTEGER,
			status TEXT DEFAULT 'active'
		)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE orders (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE VIEW adult_users AS SELECT * FROM users WHERE age >= 18`)
	require.NoError(t, err)

	schemas, err := a.ExtractSchemas(ctx, db, "sqlite://ignored.db")
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "main", schemas[0].Name)
	assert.True(t, schemas[0].IsDefault)

	tables, err := a.ListTables(ctx, db, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)

	views, err := a.ListViews(ctx, db, "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"adult_users"}, views)

	columns, err := a.ListColumns(ctx, db, "main", "users")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	id := columns[0]
	assert.Equal(t, "id", id.Name)
	assert.True(t, id.IsPrimaryKey)
	assert.Equal(t, 1, id.Position)

	email := columns[1]
	assert.Equal(t, "email", email.Name)
	assert.False(t, email.Nullable)
	assert.False(t, email.IsPrimaryKey)

	age := columns[2]
	assert.True(t, age.Nullable)
	assert.Nil(t, age.Default)

	status := columns[3]
	require.NotNil(t, status.Default)
	assert.Equal(t, "'active'", *status.Default)
	assert.Equal(t, 4, status.Position)
}

func TestSerialize(t *testing.T) {
	a := New()

	assert.Nil(t, a.Serialize(nil, ""))
	assert.Equal(t, int64(1), a.Serialize(int64(1), "INTEGER"))
	assert.Equal(t, "hello", a.Serialize("hello", "TEXT"))
	assert.Equal(t, 2.5, a.Serialize(2.5, "REAL"))
	assert.Equal(t, 9.99, a.Serialize("9.99", "DECIMAL"))
	assert.Equal(t, "0011", a.Serialize([]byte{0x00, 0x11}, "BLOB"))
}

func TestAdapterIdentity(t *testing.T) {
	a := New()
	assert.Equal(t, "sqlite", a.Type())
	assert.Equal(t, []string{"sqlite://"}, a.Prefixes())
	assert.False(t, a.SupportsSchemas())
	assert.Equal(t, "sqlite", a.DriverName())
	assert.Equal(t, dialect.PoolConfig{PoolSize: 5, MaxOverflow: 10, PrePing: true}, a.PoolDefaults())
	assert.True(t, a.MatchesURL("sqlite:///tmp/a.db"))
	assert.False(t, a.MatchesURL("postgresql://h/db"))
	assert.Contains(t, a.NLRules(), "strftime")
}
