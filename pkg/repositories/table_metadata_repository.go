package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/queryforge-io/queryforge-engine/pkg/models"
)

// TableMetadataRepository provides data access for extracted table and
// view metadata.
type TableMetadataRepository interface {
	// Create inserts one table record and returns it with its ID set.
	Create(ctx context.Context, dbName, schemaName, tableName, tableType string) (*models.TableMetadata, error)

	// GetByDatabase retrieves every table record for a connection,
	// ordered by schema then name.
	GetByDatabase(ctx context.Context, dbName string) ([]*models.TableMetadata, error)

	// DeleteByDatabase removes all table records (and, via cascade,
	// their columns) for a connection.
	DeleteByDatabase(ctx context.Context, dbName string) error
}

type tableMetadataRepository struct {
	db *sql.DB
}

// NewTableMetadataRepository creates a TableMetadataRepository backed by
// the metadata store.
func NewTableMetadataRepository(db *sql.DB) TableMetadataRepository {
	return &tableMetadataRepository{db: db}
}

var _ TableMetadataRepository = (*tableMetadataRepository)(nil)

func (r *tableMetadataRepository) Create(ctx context.Context, dbName, schemaName, tableName, tableType string) (*models.TableMetadata, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO table_metadata (db_name, schema_name, table_name, table_type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		dbName, schemaName, tableName, tableType, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create table metadata for %s.%s: %w", schemaName, tableName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.TableMetadata{
		ID:         id,
		DBName:     dbName,
		SchemaName: schemaName,
		TableName:  tableName,
		TableType:  tableType,
		CreatedAt:  now,
	}, nil
}

func (r *tableMetadataRepository) GetByDatabase(ctx context.Context, dbName string) ([]*models.TableMetadata, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, db_name, schema_name, table_name, table_type, created_at
		FROM table_metadata
		WHERE db_name = ?
		ORDER BY schema_name, table_name`, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to list table metadata for %q: %w", dbName, err)
	}
	defer rows.Close()

	var tables []*models.TableMetadata
	for rows.Next() {
		var t models.TableMetadata
		if err := rows.Scan(&t.ID, &t.DBName, &t.SchemaName, &t.TableName, &t.TableType, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table metadata: %w", err)
		}
		tables = append(tables, &t)
	}
	return tables, rows.Err()
}

func (r *tableMetadataRepository) DeleteByDatabase(ctx context.Context, dbName string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM table_metadata WHERE db_name = ?", dbName)
	if err != nil {
		return fmt.Errorf("failed to delete table metadata for %q: %w", dbName, err)
	}
	return nil
}
