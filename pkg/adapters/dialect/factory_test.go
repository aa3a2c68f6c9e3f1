package dialect_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/sqlite"
	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
)

func newSQLiteFactory(t *testing.T) *dialect.Factory {
	t.Helper()
	r := dialect.NewRegistry()
	require.NoError(t, r.Register(sqlite.New()))
	return dialect.NewFactory(r, zap.NewNop())
}

func tempDBURL(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "test.db")
}

func TestFactoryDatabaseType(t *testing.T) {
	f := newSQLiteFactory(t)

	dbType, err := f.DatabaseType("sqlite:///tmp/x.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dbType)

	_, err = f.DatabaseType("oracle://h/db")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedDatabase))
}

func TestFactoryCreateEngine(t *testing.T) {
	f := newSQLiteFactory(t)
	ctx := context.Background()

	db, err := f.CreateEngine(ctx, tempDBURL(t), false)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestFactoryCreateEngineForQueryIsSingleConnection(t *testing.T) {
	f := newSQLiteFactory(t)

	db, err := f.CreateEngine(context.Background(), tempDBURL(t), true)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestFactoryTestConnection(t *testing.T) {
	f := newSQLiteFactory(t)
	ctx := context.Background()

	require.NoError(t, f.TestConnection(ctx, "good", tempDBURL(t)))

	err := f.TestConnection(ctx, "bad", "sqlite:///nonexistent-dir-for-sure/db.sqlite")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConnectionFailed))

	err = f.TestConnection(ctx, "odd", "oracle://h/db")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedDatabase))
}

func TestExtractDatabaseName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgresql://u:p@localhost:5432/mydb", "mydb"},
		{"mysql://u:p@localhost/shop?parseTime=true", "shop"},
		{"sqlite:///var/data/app.db", "var/data/app.db"},
		{"postgresql://u:p@localhost", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dialect.ExtractDatabaseName(tt.url), tt.url)
	}
}
