package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/postgres"
	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"mysql", "postgresql", "sqlite"}, r.SupportedTypes())

	// every declared prefix resolves to its own dialect
	for prefix, wantType := range map[string]string{
		"postgresql://":     "postgresql",
		"postgres://":       "postgresql",
		"mysql://":          "mysql",
		"mariadb://":        "mysql",
		"mysql+pymysql://":  "mysql",
		"mysql+aiomysql://": "mysql",
		"sqlite://":         "sqlite",
	} {
		a, err := r.AdapterFor(prefix + "user:pass@host/db")
		require.NoError(t, err, prefix)
		assert.Equal(t, wantType, a.Type(), prefix)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	// registering a second set of instances conflicts; the registry
	// keeps its original adapters
	assert.Error(t, Register(r))
	assert.Len(t, r.SupportedTypes(), 3)
}

func TestRegisterDistinguishesInstances(t *testing.T) {
	r := dialect.NewRegistry()
	a := postgres.New()

	require.NoError(t, r.Register(a))

	// same instance again is a no-op
	require.NoError(t, r.Register(a))

	// a fresh instance of the same dialect is a conflict
	err := r.Register(postgres.New())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRegistrationConflict))
	assert.Equal(t, []string{"postgresql"}, r.SupportedTypes())
}
