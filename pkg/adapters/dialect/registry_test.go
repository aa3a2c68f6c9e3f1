package dialect

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
)

type stubAdapter struct {
	typ      string
	prefixes []string
}

func (s *stubAdapter) Type() string                 { return s.typ }
func (s *stubAdapter) Prefixes() []string           { return s.prefixes }
func (s *stubAdapter) ParserDialect() string        { return s.typ }
func (s *stubAdapter) SupportsSchemas() bool        { return true }
func (s *stubAdapter) SupportsLimit() bool          { return true }
func (s *stubAdapter) PoolDefaults() PoolConfig     { return PoolConfig{PoolSize: 1} }
func (s *stubAdapter) MatchesURL(u string) bool     { return MatchesPrefix(u, s.prefixes) }
func (s *stubAdapter) NormalizeURL(u string) string { return u }
func (s *stubAdapter) DriverName() string           { return s.typ }
func (s *stubAdapter) DSN(u string) (string, error) { return u, nil }

func (s *stubAdapter) ExtractSchemas(ctx context.Context, db *sql.DB, url string) ([]SchemaInfo, error) {
	return nil, nil
}
func (s *stubAdapter) ListTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return nil, nil
}
func (s *stubAdapter) ListViews(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	return nil, nil
}
func (s *stubAdapter) ListColumns(ctx context.Context, db *sql.DB, schema, table string) ([]ColumnInfo, error) {
	return nil, nil
}
func (s *stubAdapter) NormalizeDataType(raw string) string       { return raw }
func (s *stubAdapter) NormalizeDefaultValue(raw *string) *string { return raw }
func (s *stubAdapter) NLRules() string                           { return "" }
func (s *stubAdapter) Serialize(v any, typeName string) any      { return v }

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	pg := &stubAdapter{typ: "postgresql", prefixes: []string{"postgresql://", "postgres://"}}
	lite := &stubAdapter{typ: "sqlite", prefixes: []string{"sqlite://"}}

	require.NoError(t, r.Register(pg))
	require.NoError(t, r.Register(lite))

	got, err := r.AdapterFor("postgres://u:p@localhost/db")
	require.NoError(t, err)
	assert.Same(t, pg, got)

	got, err = r.AdapterFor("SQLITE:///tmp/x.db")
	require.NoError(t, err)
	assert.Same(t, lite, got)

	got, err = r.AdapterForType("PostgreSQL")
	require.NoError(t, err)
	assert.Same(t, pg, got)

	assert.Equal(t, []string{"postgresql", "sqlite"}, r.SupportedTypes())
	assert.Equal(t, []string{"postgresql://", "postgres://", "sqlite://"}, r.SupportedPrefixes())
}

func TestRegistryIdempotentReregistration(t *testing.T) {
	r := NewRegistry()
	pg := &stubAdapter{typ: "postgresql", prefixes: []string{"postgresql://"}}

	require.NoError(t, r.Register(pg))
	require.NoError(t, r.Register(pg))
	assert.Len(t, r.SupportedTypes(), 1)
}

func TestRegistryConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{typ: "postgresql", prefixes: []string{"postgresql://"}}))

	err := r.Register(&stubAdapter{typ: "postgresql", prefixes: []string{"pg://"}})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistrationConflict))

	err = r.Register(&stubAdapter{typ: "cockroach", prefixes: []string{"postgresql://"}})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistrationConflict))

	// failed registration must not leave partial state behind
	_, err = r.AdapterForType("cockroach")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAdapterNotFound))
}

func TestRegistryUnsupportedURL(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubAdapter{typ: "sqlite", prefixes: []string{"sqlite://"}}))

	_, err := r.AdapterFor("oracle://h/db")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedDatabase))
	assert.Contains(t, err.Error(), "oracle://h/db")
	assert.False(t, r.IsSupported("oracle://h/db"))
	assert.True(t, r.IsSupported("sqlite:///tmp/a.db"))
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	pg := &stubAdapter{typ: "postgresql", prefixes: []string{"postgresql://", "postgres://"}}
	require.NoError(t, r.Register(pg))

	r.Unregister(pg)
	assert.Empty(t, r.SupportedTypes())
	assert.Empty(t, r.SupportedPrefixes())

	// unknown adapter is a silent no-op
	r.Unregister(&stubAdapter{typ: "mysql", prefixes: []string{"mysql://"}})
}

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	first := &stubAdapter{typ: "alpha", prefixes: []string{"db://"}}
	require.NoError(t, r.Register(first))

	got, err := r.AdapterFor("db://anywhere")
	require.NoError(t, err)
	assert.Same(t, first, got)
}
