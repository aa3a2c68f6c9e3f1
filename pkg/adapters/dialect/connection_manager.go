package dialect

import (
	"context"
	"database/sql"
	"sync"

	"go.uber.org/zap"

	"github.com/queryforge-io/queryforge-engine/pkg/logging"
)

// ConnectionManager caches pooled database handles keyed by connection
// name plus normalized URL, so repeated work against the same database
// reuses one pool. Handles live until explicitly removed or the manager
// is closed; check-then-create runs under the manager lock, so concurrent
// requests for the same connection share a single handle.
type ConnectionManager struct {
	mu      sync.RWMutex
	engines map[string]*sql.DB
	factory *Factory
	logger  *zap.Logger
}

// NewConnectionManager returns an empty manager backed by the factory.
func NewConnectionManager(factory *Factory, logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		engines: make(map[string]*sql.DB),
		factory: factory,
		logger:  logger,
	}
}

func (m *ConnectionManager) key(name, connectionURL string) (string, error) {
	adapter, err := m.factory.Adapter(connectionURL)
	if err != nil {
		return "", err
	}
	return name + ":" + adapter.NormalizeURL(connectionURL), nil
}

// GetEngine returns the cached pooled handle for the connection, creating
// it on first use.
func (m *ConnectionManager) GetEngine(ctx context.Context, name, connectionURL string) (*sql.DB, error) {
	key, err := m.key(name, connectionURL)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	db, ok := m.engines[key]
	m.mu.RUnlock()
	if ok {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if db, ok := m.engines[key]; ok {
		return db, nil
	}

	db, err = m.factory.CreateEngine(ctx, connectionURL, false)
	if err != nil {
		m.logger.Error("failed to create engine",
			zap.String("connection", name),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	m.engines[key] = db
	m.logger.Info("cached database engine",
		zap.String("connection", name),
		zap.String("url", logging.MaskConnectionURL(connectionURL)))
	return db, nil
}

// RemoveEngine closes and evicts the cached handle for the connection.
// Removing an unknown connection is a no-op.
func (m *ConnectionManager) RemoveEngine(name, connectionURL string) error {
	key, err := m.key(name, connectionURL)
	if err != nil {
		return err
	}

	m.mu.Lock()
	db, ok := m.engines[key]
	if ok {
		delete(m.engines, key)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	if err := db.Close(); err != nil {
		m.logger.Warn("error closing engine",
			zap.String("connection", name),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}
	m.logger.Info("removed database engine", zap.String("connection", name))
	return nil
}

// Size reports how many handles are cached.
func (m *ConnectionManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.engines)
}

// CloseAll closes every cached handle and empties the cache. The first
// close error is returned after all handles are closed.
func (m *ConnectionManager) CloseAll() error {
	m.mu.Lock()
	engines := m.engines
	m.engines = make(map[string]*sql.DB)
	m.mu.Unlock()

	var firstErr error
	for key, db := range engines {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
			m.logger.Warn("error closing engine", zap.String("key", key))
		}
	}
	return firstErr
}
