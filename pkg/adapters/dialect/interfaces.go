package dialect

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// PoolConfig carries the connection pool settings an adapter recommends for
// its database family. Values map onto database/sql pool knobs when an
// engine is created.
type PoolConfig struct {
	// PoolSize is the number of idle connections kept in the pool.
	PoolSize int
	// MaxOverflow is how many connections beyond PoolSize may be opened
	// under load; PoolSize+MaxOverflow bounds total open connections.
	MaxOverflow int
	// PrePing validates connections with a ping when an engine is built.
	PrePing bool
	// Recycle closes connections older than this. Zero means never.
	Recycle time.Duration
}

// SchemaInfo identifies one namespace within a database.
type SchemaInfo struct {
	Name      string
	IsDefault bool
}

// ColumnInfo describes one column as reported by the database catalog.
// RawType is the vendor spelling (e.g. "character varying(255)"); callers
// run it through NormalizeDataType before persisting.
type ColumnInfo struct {
	Name         string
	RawType      string
	Nullable     bool
	IsPrimaryKey bool
	Default      *string
	Position     int
}

// Adapter encapsulates everything dialect-specific about one database
// family: URL recognition and normalization, driver selection, catalog
// introspection, type normalization, and result value serialization.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Type is the canonical identifier ("postgresql", "mysql", "sqlite").
	Type() string
	// Prefixes lists the lowercase URL prefixes this adapter claims,
	// most specific first.
	Prefixes() []string
	// ParserDialect names the SQL dialect used for statement parsing.
	ParserDialect() string
	// SupportsSchemas reports whether the database has real schema
	// namespaces (false for SQLite).
	SupportsSchemas() bool
	// SupportsLimit reports whether LIMIT clauses are accepted.
	SupportsLimit() bool
	// PoolDefaults returns the recommended pool settings.
	PoolDefaults() PoolConfig

	// MatchesURL reports whether this adapter handles the given URL.
	MatchesURL(url string) bool
	// NormalizeURL rewrites a connection URL into the adapter's canonical
	// form. It is idempotent: normalizing an already-normalized URL
	// returns it unchanged.
	NormalizeURL(url string) string
	// DriverName is the database/sql driver to open connections with.
	DriverName() string
	// DSN converts a normalized connection URL into the string the
	// driver expects.
	DSN(normalizedURL string) (string, error)

	// ExtractSchemas lists the schemas to introspect for this database.
	ExtractSchemas(ctx context.Context, db *sql.DB, connectionURL string) ([]SchemaInfo, error)
	// ListTables returns base table names in a schema, sorted.
	ListTables(ctx context.Context, db *sql.DB, schema string) ([]string, error)
	// ListViews returns view names in a schema, sorted.
	ListViews(ctx context.Context, db *sql.DB, schema string) ([]string, error)
	// ListColumns returns column details for one table in catalog order.
	ListColumns(ctx context.Context, db *sql.DB, schema, table string) ([]ColumnInfo, error)

	// NormalizeDataType maps a vendor type spelling to a generic name.
	NormalizeDataType(raw string) string
	// NormalizeDefaultValue cleans up a column default for display.
	NormalizeDefaultValue(raw *string) *string
	// NLRules returns dialect guidance injected into natural language
	// query prompts.
	NLRules() string
	// Serialize converts one result cell into a JSON-safe value.
	// typeName is the driver-reported database type for the column and
	// may be empty.
	Serialize(value any, typeName string) any
}

// MatchesPrefix reports whether url starts with any of the given prefixes,
// compared case-insensitively.
func MatchesPrefix(url string, prefixes []string) bool {
	lower := strings.ToLower(url)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
