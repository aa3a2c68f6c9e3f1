// Package sqlite implements the SQLite dialect adapter on top of the
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
)

// Adapter handles sqlite:// connection URLs. The part after the scheme is
// the database file path: sqlite:///var/data/app.db opens /var/data/app.db.
type Adapter struct {
	prefixes []string
}

// New returns the SQLite adapter.
func New() *Adapter {
	return &Adapter{
		prefixes: []string{"sqlite://"},
	}
}

func (a *Adapter) Type() string          { return "sqlite" }
func (a *Adapter) Prefixes() []string    { return a.prefixes }
func (a *Adapter) ParserDialect() string { return "sqlite" }
func (a *Adapter) SupportsSchemas() bool { return false }
func (a *Adapter) SupportsLimit() bool   { return true }
func (a *Adapter) DriverName() string    { return "sqlite" }

func (a *Adapter) PoolDefaults() dialect.PoolConfig {
	return dialect.PoolConfig{
		PoolSize:    5,
		MaxOverflow: 10,
		PrePing:     true,
	}
}

func (a *Adapter) MatchesURL(url string) bool {
	return dialect.MatchesPrefix(url, a.Prefixes())
}

func (a *Adapter) NormalizeURL(url string) string {
	return url
}

// DSN strips the sqlite:// scheme, leaving the file path the driver opens.
func (a *Adapter) DSN(normalizedURL string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(normalizedURL), "sqlite://") {
		return "", fmt.Errorf("not a sqlite URL: %s", normalizedURL)
	}
	path := normalizedURL[len("sqlite://"):]
	if path == "" {
		return "", errors.New("sqlite URL has no database path")
	}
	return path, nil
}

// ExtractSchemas returns the single implicit schema; SQLite has no
// namespaces beyond attached databases.
func (a *Adapter) ExtractSchemas(ctx context.Context, db *sql.DB, connectionURL string) ([]dialect.SchemaInfo, error) {
	return []dialect.SchemaInfo{{Name: "main", IsDefault: true}}, nil
}

func (a *Adapter) ListTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return a.listObjects(ctx, db, "table")
}

func (a *Adapter) ListViews(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return a.listObjects(ctx, db, "view")
}

func (a *Adapter) listObjects(ctx context.Context, db *sql.DB, objectType string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = ? AND name NOT LIKE 'sqlite_%'
		ORDER BY name`, objectType)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", objectType, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListColumns reads PRAGMA table_info. The schema argument is ignored;
// everything lives in main.
func (a *Adapter) ListColumns(ctx context.Context, db *sql.DB, schema, table string) ([]dialect.ColumnInfo, error) {
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, fmt.Errorf("reading table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []dialect.ColumnInfo
	for rows.Next() {
		var (
			cid     int
			name    string
			rawType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &rawType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		col := dialect.ColumnInfo{
			Name:         name,
			RawType:      rawType,
			Nullable:     notNull == 0,
			IsPrimaryKey: pk > 0,
			Position:     cid + 1,
		}
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// NormalizeDataType applies SQLite's type affinity rules: declared types
// collapse into INTEGER, TEXT, BLOB, REAL, or NUMERIC.
func (a *Adapter) NormalizeDataType(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case containsAny(upper, "INT", "BIGINT", "SMALLINT", "TINYINT", "BYTEINT"):
		return "INTEGER"
	case containsAny(upper, "CHAR", "VARCHAR", "TEXT", "CLOB"):
		return "TEXT"
	case strings.Contains(upper, "BLOB") || upper == "":
		return "BLOB"
	case containsAny(upper, "REAL", "FLOAT", "DOUBLE"):
		return "REAL"
	case containsAny(upper, "DECIMAL", "NUMERIC", "BOOLEAN", "DATE", "DATETIME", "TIME"):
		return "NUMERIC"
	}
	return raw
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (a *Adapter) NormalizeDefaultValue(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	return &v
}

func (a *Adapter) NLRules() string {
	return `
SQLite-specific rules:
- No identifier quoting needed in most cases
- Use LIMIT n syntax
- String literals use single quotes
- No native boolean type (use 0/1)
- Date/time functions: datetime(), date(), strftime()`
}

// Serialize converts one result cell. SQLite's storage classes already map
// cleanly onto the shared chain; declared decimals still come back as
// floats for consistency with the other dialects.
func (a *Adapter) Serialize(value any, typeName string) any {
	if value == nil {
		return nil
	}
	if dialect.IsDecimalType(typeName) {
		return dialect.SerializeDecimal(value)
	}
	return dialect.SerializeValue(value)
}
