// Package postgres implements the PostgreSQL dialect adapter on top of the
// pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
)

var typeMappings = map[string]string{
	"CHARACTER VARYING":           "VARCHAR",
	"CHARACTER":                   "CHAR",
	"DOUBLE PRECISION":            "DOUBLE",
	"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
	"TIMESTAMP WITH TIME ZONE":    "TIMESTAMPTZ",
	"TIME WITHOUT TIME ZONE":      "TIME",
	"TIME WITH TIME ZONE":         "TIMETZ",
	"BIGSERIAL":                   "BIGINT",
	"SERIAL":                      "INTEGER",
	"SMALLSERIAL":                 "SMALLINT",
}

// Adapter handles postgresql:// and postgres:// connection URLs.
type Adapter struct {
	prefixes []string
}

// New returns the PostgreSQL adapter.
func New() *Adapter {
	return &Adapter{
		prefixes: []string{"postgresql://", "postgres://"},
	}
}

func (a *Adapter) Type() string          { return "postgresql" }
func (a *Adapter) Prefixes() []string    { return a.prefixes }
func (a *Adapter) ParserDialect() string { return "postgres" }
func (a *Adapter) SupportsSchemas() bool { return true }
func (a *Adapter) SupportsLimit() bool   { return true }
func (a *Adapter) DriverName() string    { return "pgx" }

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

// NormalizeURL rewrites postgres:// to postgresql://.
func (a *Adapter) NormalizeURL(url string) string {
	if strings.HasPrefix(strings.ToLower(url), "postgres://") {
		return "postgresql://" + url[len("postgres://"):]
	}
	return url
}

// DSN returns the URL unchanged; the pgx stdlib driver accepts
// postgresql:// URLs directly.
func (a *Adapter) DSN(normalizedURL string) (string, error) {
	return normalizedURL, nil
}

// ExtractSchemas pins introspection to the public schema, keeping system
// schemas like pg_catalog and information_schema out of metadata.
func (a *Adapter) ExtractSchemas(ctx context.Context, db *sql.DB, connectionURL string) ([]dialect.SchemaInfo, error) {
	return []dialect.SchemaInfo{{Name: "public", IsDefault: true}}, nil
}

func (a *Adapter) ListTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return a.listRelations(ctx, db, schema, "BASE TABLE")
}

func (a *Adapter) ListViews(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return a.listRelations(ctx, db, schema, "VIEW")
}

func (a *Adapter) listRelations(ctx context.Context, db *sql.DB, schema, tableType string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = $2
		ORDER BY table_name`, schema, tableType)
	if err != nil {
		return nil, fmt.Errorf("listing relations in %s: %w", schema, err)
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

func (a *Adapter) ListColumns(ctx context.Context, db *sql.DB, schema, table string) ([]dialect.ColumnInfo, error) {
	pks, err := a.primaryKeyColumns(ctx, db, schema, table)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, character_maximum_length,
		       is_nullable, column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []dialect.ColumnInfo
	for rows.Next() {
		var (
			col      dialect.ColumnInfo
			dataType string
			maxLen   sql.NullInt64
			nullable string
			dflt     sql.NullString
		)
		if err := rows.Scan(&col.Name, &dataType, &maxLen, &nullable, &dflt, &col.Position); err != nil {
			return nil, err
		}
		col.RawType = dataType
		if maxLen.Valid {
			col.RawType = fmt.Sprintf("%s(%d)", dataType, maxLen.Int64)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		col.IsPrimaryKey = pks[col.Name]
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (a *Adapter) primaryKeyColumns(ctx context.Context, db *sql.DB, schema, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = (quote_ident($1) || '.' || quote_ident($2))::regclass
		  AND i.indisprimary`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("reading primary key of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	pks := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pks[name] = true
	}
	return pks, rows.Err()
}

func (a *Adapter) NormalizeDataType(raw string) string {
	base := strings.TrimSpace(strings.ToUpper(strings.SplitN(raw, "(", 2)[0]))
	if mapped, ok := typeMappings[base]; ok {
		return mapped
	}
	return raw
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
PostgreSQL-specific rules:
- Use double quotes (") for identifier quoting if needed
- Use LIMIT n syntax
- String literals use single quotes
- Boolean values: true/false
- Date/time functions: NOW(), CURRENT_DATE, TO_CHAR()
- Use COALESCE() for null handling`
}

// Serialize handles the PostgreSQL-specific column types before falling
// back to the shared conversion chain.
func (a *Adapter) Serialize(value any, typeName string) any {
	if value == nil {
		return nil
	}
	upper := strings.ToUpper(typeName)
	switch {
	case dialect.IsDecimalType(upper):
		return dialect.SerializeDecimal(value)
	case upper == "JSON" || upper == "JSONB":
		return dialect.SerializeJSON(value)
	case upper == "DATE":
		if t, ok := value.(time.Time); ok {
			return dialect.FormatDate(t)
		}
	case upper == "INTERVAL":
		// keep the driver's textual form
		switch v := value.(type) {
		case string:
			return v
		case []byte:
			return string(v)
		}
	}
	return dialect.SerializeValue(value)
}
