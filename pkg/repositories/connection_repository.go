// Package repositories provides data access to the metadata store.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/queryforge-io/queryforge-engine/pkg/models"
)

// ConnectionRepository provides data access for registered database
// connections.
type ConnectionRepository interface {
	// Create inserts a new connection record.
	Create(ctx context.Context, name, connectionURL string) (*models.DatabaseConnection, error)

	// Get retrieves a connection by name; nil when absent.
	Get(ctx context.Context, name string) (*models.DatabaseConnection, error)

	// GetAll retrieves every connection ordered by name.
	GetAll(ctx context.Context) ([]*models.DatabaseConnection, error)

	// Delete removes a connection; reports whether a row was deleted.
	Delete(ctx context.Context, name string) (bool, error)

	// Touch bumps a connection's updated_at to now.
	Touch(ctx context.Context, name string) error
}

type connectionRepository struct {
	db *sql.DB
}

// NewConnectionRepository creates a ConnectionRepository backed by the
// metadata store.
func NewConnectionRepository(db *sql.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

var _ ConnectionRepository = (*connectionRepository)(nil)

func (r *connectionRepository) Create(ctx context.Context, name, connectionURL string) (*models.DatabaseConnection, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO database_connections (name, connection_url, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		name, connectionURL, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection %q: %w", name, err)
	}
	return r.Get(ctx, name)
}

func (r *connectionRepository) Get(ctx context.Context, name string) (*models.DatabaseConnection, error) {
	var conn models.DatabaseConnection
	err := r.db.QueryRowContext(ctx, `
		SELECT name, connection_url, created_at, updated_at
		FROM database_connections
		WHERE name = ?`, name).
		Scan(&conn.Name, &conn.URL, &conn.CreatedAt, &conn.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection %q: %w", name, err)
	}
	return &conn, nil
}

func (r *connectionRepository) GetAll(ctx context.Context) ([]*models.DatabaseConnection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, connection_url, created_at, updated_at
		FROM database_connections
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var conns []*models.DatabaseConnection
	for rows.Next() {
		var conn models.DatabaseConnection
		if err := rows.Scan(&conn.Name, &conn.URL, &conn.CreatedAt, &conn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, &conn)
	}
	return conns, rows.Err()
}

func (r *connectionRepository) Delete(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM database_connections WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("failed to delete connection %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *connectionRepository) Touch(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE database_connections SET updated_at = ? WHERE name = ?",
		time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to touch connection %q: %w", name, err)
	}
	return nil
}
