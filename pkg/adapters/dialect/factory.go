package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/apperrors"
	"github.com/queryforge-io/queryforge-engine/pkg/logging"
)

// Factory builds database handles from connection URLs by delegating the
// dialect-specific parts to the registered adapters.
type Factory struct {
	registry *Registry
	logger   *zap.Logger
}

// NewFactory wires a factory to a registry.
func NewFactory(registry *Registry, logger *zap.Logger) *Factory {
	return &Factory{registry: registry, logger: logger}
}

// Registry exposes the backing registry.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Adapter resolves the adapter for a connection URL.
func (f *Factory) Adapter(connectionURL string) (Adapter, error) {
	return f.registry.AdapterFor(connectionURL)
}

// AdapterByType resolves an adapter by its canonical type name.
func (f *Factory) AdapterByType(dbType string) (Adapter, error) {
	return f.registry.AdapterForType(dbType)
}

// DatabaseType returns the canonical type name for a connection URL.
func (f *Factory) DatabaseType(connectionURL string) (string, error) {
	a, err := f.registry.AdapterFor(connectionURL)
	if err != nil {
		return "", err
	}
	return a.Type(), nil
}

// CreateEngine opens a database handle for the URL. forQuery engines are
// capped at a single connection and meant to be closed after one piece of
// work; otherwise the adapter's pool defaults apply. The handle is pinged
// before being returned when the adapter asks for pre-ping validation.
func (f *Factory) CreateEngine(ctx context.Context, connectionURL string, forQuery bool) (*sql.DB, error) {
	adapter, err := f.registry.AdapterFor(connectionURL)
	if err != nil {
		return nil, err
	}

	normalized := adapter.NormalizeURL(connectionURL)
	dsn, err := adapter.DSN(normalized)
	if err != nil {
		return nil, fmt.Errorf("building DSN for %s: %w", adapter.Type(), err)
	}

	db, err := sql.Open(adapter.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s handle: %w", adapter.Type(), err)
	}

	pool := adapter.PoolDefaults()
	if forQuery {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(0)
	} else {
		db.SetMaxOpenConns(pool.PoolSize + pool.MaxOverflow)
		db.SetMaxIdleConns(pool.PoolSize)
		if pool.Recycle > 0 {
			db.SetConnMaxLifetime(pool.Recycle)
		}
	}

	if pool.PrePing && !forQuery {
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pinging %s database: %w", adapter.Type(), err)
		}
	}

	f.logger.Debug("created database engine",
		zap.String("db_type", adapter.Type()),
		zap.String("url", logging.MaskConnectionURL(normalized)),
		zap.Bool("for_query", forQuery))
	return db, nil
}

// TestConnection verifies a URL is reachable by opening a single-connection
// handle, pinging it, and running a trivial query. The handle is always
// closed before returning.
func (f *Factory) TestConnection(ctx context.Context, name, connectionURL string) error {
	db, err := f.CreateEngine(ctx, connectionURL, true)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnsupportedDatabase) {
			return err
		}
		return apperrors.ConnectionFailed(name, logging.SanitizeError(err), err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return apperrors.ConnectionFailed(name, logging.SanitizeError(err), err)
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return apperrors.ConnectionFailed(name, logging.SanitizeError(err), err)
	}
	return nil
}

// ExtractDatabaseName pulls the database name out of a connection URL.
// Returns the empty string when the URL carries none.
func ExtractDatabaseName(connectionURL string) string {
	u, err := url.Parse(connectionURL)
	if err != nil {
		return ""
	}
	name := strings.TrimPrefix(u.Path, "/")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}
