// Package mysql implements the MySQL/MariaDB dialect adapter on top of the
// go-sql-driver/mysql driver.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
)

var typeMappings = map[string]string{
	"VARCHAR":    "VARCHAR",
	"CHAR":       "CHAR",
	"TEXT":       "TEXT",
	"TINYTEXT":   "TEXT",
	"MEDIUMTEXT": "TEXT",
	"LONGTEXT":   "TEXT",
	"BLOB":       "BLOB",
	"TINYBLOB":   "BLOB",
	"MEDIUMBLOB": "BLOB",
	"LONGBLOB":   "BLOB",
	"DATETIME":   "DATETIME",
	"TIMESTAMP":  "TIMESTAMP",
	"DATE":       "DATE",
	"TIME":       "TIME",
	"YEAR":       "YEAR",
	"DECIMAL":    "DECIMAL",
	"NUMERIC":    "DECIMAL",
	"FLOAT":      "FLOAT",
	"DOUBLE":     "DOUBLE",
	"INT":        "INT",
	"INTEGER":    "INT",
	"TINYINT":    "TINYINT",
	"SMALLINT":   "SMALLINT",
	"MEDIUMINT":  "MEDIUMINT",
	"BIGINT":     "BIGINT",
	"BIT":        "BIT",
	"BOOLEAN":    "BOOLEAN",
	"BOOL":       "BOOLEAN",
	"ENUM":       "ENUM",
	"SET":        "SET",
	"JSON":       "JSON",
	"BINARY":     "BINARY",
	"VARBINARY":  "VARBINARY",
}

// System databases excluded when no target database is named in the URL.
const systemSchemaFilter = "('information_schema', 'mysql', 'performance_schema', 'sys')"

// Adapter handles mysql://, mariadb://, and driver-qualified
// mysql+<driver>:// connection URLs.
type Adapter struct {
	prefixes []string
}

// New returns the MySQL adapter.
func New() *Adapter {
	return &Adapter{
		prefixes: []string{"mysql://", "mariadb://", "mysql+"},
	}
}

func (a *Adapter) Type() string          { return "mysql" }
func (a *Adapter) Prefixes() []string    { return a.prefixes }
func (a *Adapter) ParserDialect() string { return "mysql" }
func (a *Adapter) SupportsSchemas() bool { return true }
func (a *Adapter) SupportsLimit() bool   { return true }
func (a *Adapter) DriverName() string    { return "mysql" }

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

// NormalizeURL rewrites mariadb:// and driver-qualified mysql+<driver>://
// schemes to plain mysql:// and pins parseTime=true so DATE/DATETIME
// columns scan as time.Time rather than raw bytes.
func (a *Adapter) NormalizeURL(connectionURL string) string {
	normalized := connectionURL
	lower := strings.ToLower(normalized)
	switch {
	case strings.HasPrefix(lower, "mariadb://"):
		normalized = "mysql://" + normalized[len("mariadb://"):]
	case strings.HasPrefix(lower, "mysql+"):
		if idx := strings.Index(normalized, "://"); idx >= 0 {
			normalized = "mysql://" + normalized[idx+len("://"):]
		}
	}
	if strings.Contains(strings.ToLower(normalized), "parsetime=") {
		return normalized
	}
	if strings.Contains(normalized, "?") {
		return normalized + "&parseTime=true"
	}
	return normalized + "?parseTime=true"
}

// DSN converts a normalized mysql:// URL into the driver's DSN form
// (user:pass@tcp(host:port)/dbname?params).
func (a *Adapter) DSN(normalizedURL string) (string, error) {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return "", fmt.Errorf("parsing MySQL URL: %w", err)
	}

	cfg := gomysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Passwd = pw
		}
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = u.Host + ":3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if strings.EqualFold(key, "parseTime") {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = values[0]
	}
	return cfg.FormatDSN(), nil
}

// ExtractSchemas treats the database named in the URL as the single
// schema. Without one it falls back to every non-system database the
// connection can see.
func (a *Adapter) ExtractSchemas(ctx context.Context, db *sql.DB, connectionURL string) ([]dialect.SchemaInfo, error) {
	if target := dialect.ExtractDatabaseName(connectionURL); target != "" {
		return []dialect.SchemaInfo{{Name: target, IsDefault: true}}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN `+systemSchemaFilter+`
		ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	defer rows.Close()

	var schemas []dialect.SchemaInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		schemas = append(schemas, dialect.SchemaInfo{Name: name})
	}
	return schemas, rows.Err()
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
		WHERE table_schema = ? AND table_type = ?
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
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_default,
		       column_key, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("listing columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []dialect.ColumnInfo
	for rows.Next() {
		var (
			col       dialect.ColumnInfo
			nullable  string
			dflt      sql.NullString
			columnKey string
		)
		if err := rows.Scan(&col.Name, &col.RawType, &nullable, &dflt, &columnKey, &col.Position); err != nil {
			return nil, err
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		col.IsPrimaryKey = columnKey == "PRI"
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
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
MySQL-specific rules:
- Use backticks (` + "`" + `) for identifier quoting if needed
- Use LIMIT n syntax (same as PostgreSQL)
- String literals use single quotes
- Boolean values: TRUE/FALSE or 1/0
- Date/time functions: NOW(), CURDATE(), DATE_FORMAT()
- Use IFNULL() instead of COALESCE for single argument`
}

// Serialize handles the MySQL-specific column types before falling back
// to the shared conversion chain.
func (a *Adapter) Serialize(value any, typeName string) any {
	if value == nil {
		return nil
	}
	upper := strings.ToUpper(typeName)
	switch {
	case dialect.IsDecimalType(upper):
		return dialect.SerializeDecimal(value)
	case upper == "JSON":
		return dialect.SerializeJSON(value)
	case upper == "SET":
		return serializeSet(value)
	case upper == "TIME":
		// TIME arrives as text; keep the HH:MM:SS form
		switch v := value.(type) {
		case string:
			return v
		case []byte:
			return string(v)
		}
	case upper == "DATE":
		if t, ok := value.(time.Time); ok {
			return dialect.FormatDate(t)
		}
	}
	return dialect.SerializeValue(value)
}

func serializeSet(value any) any {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return dialect.SerializeValue(value)
	}
	if text == "" {
		return []string{}
	}
	return strings.Split(text, ",")
}
