// Package builtin registers the adapters that ship with the engine.
package builtin

import (
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/mysql"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/postgres"
	"github.com/queryforge-io/queryforge-engine/pkg/adapters/dialect/sqlite"
)

// Register adds the PostgreSQL, MySQL, and SQLite adapters to the
// registry. Registration order fixes URL prefix match order.
func Register(r *dialect.Registry) error {
	adapters := []dialect.Adapter{
		postgres.New(),
		mysql.New(),
		sqlite.New(),
	}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry builds a registry preloaded with the built-in adapters.
func NewRegistry() (*dialect.Registry, error) {
	r := dialect.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
